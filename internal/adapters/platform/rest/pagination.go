package rest

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
)

// Page is the decoded body of one list response.
type Page struct {
	Data   []domain.Entity `json:"data"`
	Next   *string         `json:"next"`
	Offset string          `json:"offset"`
	Meta   *struct {
		Page struct {
			Next   *string `json:"next"`
			Number int     `json:"number"`
			Size   int     `json:"size"`
			Total  int     `json:"total"`
		} `json:"page"`
	} `json:"meta"`
}

// Pagination adapts the list query and cursor format of one API.
type Pagination interface {
	Query(opts ports.ListOptions) url.Values
	NextToken(page Page) string
}

// OffsetPagination is the size/offset scheme of the gateway admin API.
// Tags are ANDed.
type OffsetPagination struct{}

func (OffsetPagination) Query(opts ports.ListOptions) url.Values {
	q := url.Values{}
	if opts.PageSize > 0 {
		q.Set("size", strconv.Itoa(opts.PageSize))
	}
	if opts.PageToken != "" {
		q.Set("offset", opts.PageToken)
	}
	if len(opts.Tags) > 0 {
		q.Set("tags", strings.Join(opts.Tags, ","))
	}
	return q
}

func (OffsetPagination) NextToken(page Page) string {
	if page.Offset != "" {
		return page.Offset
	}
	if page.Next == nil {
		return ""
	}
	return queryParam(*page.Next, "offset")
}

// CursorPagination is the page[size]/page[after] scheme of the control
// plane API.
type CursorPagination struct{}

func (CursorPagination) Query(opts ports.ListOptions) url.Values {
	q := url.Values{}
	if opts.PageSize > 0 {
		q.Set("page[size]", strconv.Itoa(opts.PageSize))
	}
	if opts.PageToken != "" {
		q.Set("page[after]", opts.PageToken)
	}
	if len(opts.Tags) > 0 {
		q.Set("tags", strings.Join(opts.Tags, ","))
	}
	return q
}

func (CursorPagination) NextToken(page Page) string {
	if page.Meta == nil || page.Meta.Page.Next == nil {
		return ""
	}
	return queryParam(*page.Meta.Page.Next, "page[after]")
}

// queryParam extracts key from a next link, which may be absolute or a
// bare path.
func queryParam(link, key string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}
