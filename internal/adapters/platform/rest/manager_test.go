package rest_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/gateway-sync/internal/adapters/platform/rest"
	"github.com/olusolaa/gateway-sync/internal/core/domain"
	"github.com/olusolaa/gateway-sync/internal/core/ports"
	apperrors "github.com/olusolaa/gateway-sync/internal/errors"
	"github.com/olusolaa/gateway-sync/internal/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// adminAPI is a tiny stand-in for an admin API collection.
type adminAPI struct {
	mu       sync.Mutex
	entities []map[string]any
	requests []string
	headers  http.Header
}

func (a *adminAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, r.Method+" "+r.URL.RequestURI())
	a.headers = r.Header.Clone()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		offset := 0
		if r.URL.Query().Get("offset") == "p2" {
			offset = 1
		}
		body := map[string]any{"data": a.entities[offset:min(offset+1, len(a.entities))], "next": nil}
		if offset == 0 && len(a.entities) > 1 {
			body["next"] = "/services?offset=p2"
			body["offset"] = "p2"
		}
		_ = json.NewEncoder(w).Encode(body)
	case len(parts) == 1 && r.Method == http.MethodPost:
		var in map[string]any
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &in)
		if in["name"] == "" || in["name"] == nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"schema violation","fields":{"name":"required field missing"}}`))
			return
		}
		in["id"] = "new-id"
		a.entities = append(a.entities, in)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(in)
	case len(parts) == 2:
		for i, e := range a.entities {
			if e["id"] != parts[1] && e["name"] != parts[1] {
				continue
			}
			switch r.Method {
			case http.MethodGet:
				_ = json.NewEncoder(w).Encode(e)
			case http.MethodPut:
				var in map[string]any
				raw, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(raw, &in)
				in["id"] = e["id"]
				a.entities[i] = in
				_ = json.NewEncoder(w).Encode(in)
			case http.MethodDelete:
				a.entities = append(a.entities[:i], a.entities[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
			}
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not found"}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newManager(t *testing.T, api http.Handler, byName bool) *rest.Manager {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	client, err := rest.NewClient(rest.ClientConfig{
		System:     "gateway",
		BaseURL:    server.URL,
		AuthHeader: "Kong-Admin-Token",
		Token:      "secret",
	}, server.Client(), nil, log.Nop())
	require.NoError(t, err)
	return rest.NewManager(client, domain.EntityTypeService, "/services", rest.OffsetPagination{}, byName, log.Nop())
}

func TestManager(t *testing.T) {
	ctx := context.Background()

	t.Run("CRUD", func(t *testing.T) {
		api := &adminAPI{entities: []map[string]any{{"id": "s-1", "name": "orders", "host": "a"}}}
		m := newManager(t, api, true)

		got, err := m.Get(ctx, "orders")
		require.NoError(t, err)
		assert.Equal(t, "s-1", got.ID())
		assert.Equal(t, "secret", api.headers.Get("Kong-Admin-Token"))

		created, err := m.Create(ctx, domain.Entity{"name": "billing", "host": "b"})
		require.NoError(t, err)
		assert.Equal(t, "new-id", created.ID())

		updated, err := m.Update(ctx, "billing", domain.Entity{"name": "billing", "host": "c"})
		require.NoError(t, err)
		assert.Equal(t, "c", updated["host"])
		assert.Equal(t, "new-id", updated.ID())

		exists, err := m.Exists(ctx, "billing")
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, m.Delete(ctx, "billing"))
		exists, err = m.Exists(ctx, "billing")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Not Found", func(t *testing.T) {
		m := newManager(t, &adminAPI{}, true)
		_, err := m.Get(ctx, "ghost")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	})

	t.Run("Validation Error Carries Detail", func(t *testing.T) {
		m := newManager(t, &adminAPI{}, true)
		_, err := m.Create(ctx, domain.Entity{"host": "x"})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
		assert.Contains(t, err.Error(), "schema violation")
		assert.Contains(t, err.Error(), "required field missing")
	})

	t.Run("Paging", func(t *testing.T) {
		api := &adminAPI{entities: []map[string]any{{"id": "1", "name": "a"}, {"id": "2", "name": "b"}}}
		m := newManager(t, api, true)

		page, next, err := m.List(ctx, ports.ListOptions{PageSize: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "p2", next)

		page, next, err = m.List(ctx, ports.ListOptions{PageSize: 1, PageToken: next})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "b", page[0]["name"])
		assert.Empty(t, next)
		assert.Contains(t, api.requests, "GET /services?offset=p2&size=1")
	})

	t.Run("Resolves Names By Listing", func(t *testing.T) {
		api := &adminAPI{entities: []map[string]any{{"id": "p-1", "name": "x"}, {"id": "p-2", "name": "cors"}}}
		m := newManager(t, api, false)

		got, err := m.Get(ctx, "cors")
		require.NoError(t, err)
		assert.Equal(t, "p-2", got.ID())
		assert.Contains(t, api.requests, "GET /services/p-2")

		_, err = m.Get(ctx, "missing")
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	})

	t.Run("Ambiguous Name", func(t *testing.T) {
		api := &adminAPI{entities: []map[string]any{{"id": "p-1", "name": "cors"}, {"id": "p-2", "name": "cors"}}}
		m := newManager(t, api, false)

		_, err := m.Get(ctx, "cors")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
		assert.Contains(t, err.Error(), "2 services entities on gateway are named 'cors'")
		assert.NotContains(t, api.requests, "GET /services/p-1")

		got, err := m.Get(ctx, "p-2")
		require.NoError(t, err)
		assert.Equal(t, "p-2", got.ID())
	})
}

func TestHandleStatus(t *testing.T) {
	testCases := []struct {
		status int
		code   apperrors.Code
	}{
		{http.StatusNotFound, apperrors.CodeNotFound},
		{http.StatusUnauthorized, apperrors.CodePlatformAuthError},
		{http.StatusForbidden, apperrors.CodePlatformAuthError},
		{http.StatusBadRequest, apperrors.CodeValidation},
		{http.StatusConflict, apperrors.CodeValidation},
		{http.StatusTooManyRequests, apperrors.CodeConnection},
		{http.StatusServiceUnavailable, apperrors.CodeConnection},
		{http.StatusGatewayTimeout, apperrors.CodeTimeout},
		{http.StatusInternalServerError, apperrors.CodePlatformAPIError},
	}
	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			err := rest.HandleStatus("gateway", "service 'orders'", tc.status, []byte(`{"message":"nope"}`))
			assert.Equal(t, tc.code, apperrors.GetCode(err))
			system, status := apperrors.SystemOf(err)
			assert.Equal(t, "gateway", system)
			assert.Equal(t, tc.status, status)
		})
	}
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := rest.NewClient(rest.ClientConfig{System: "control_plane", BaseURL: url}, nil, nil, log.Nop())
	require.NoError(t, err)
	m := rest.NewManager(client, domain.EntityTypeRoute, "/routes", rest.CursorPagination{}, true, log.Nop())

	_, _, err = m.List(context.Background(), ports.ListOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeConnection))

	_, err = rest.NewClient(rest.ClientConfig{System: "gateway", BaseURL: "not a url"}, nil, nil, log.Nop())
	assert.True(t, apperrors.Is(err, apperrors.CodeConfigValidation))
}

func TestCursorPagination(t *testing.T) {
	next := "/v2/control-planes/cp/core-entities/services?page%5Bafter%5D=abc&page%5Bsize%5D=100"
	page := rest.Page{}
	assert.Empty(t, rest.CursorPagination{}.NextToken(page))

	require.NoError(t, json.Unmarshal([]byte(`{"data":[],"meta":{"page":{"next":"`+next+`","size":100}}}`), &page))
	assert.Equal(t, "abc", rest.CursorPagination{}.NextToken(page))

	q := rest.CursorPagination{}.Query(ports.ListOptions{PageSize: 50, PageToken: "abc"})
	assert.Equal(t, "50", q.Get("page[size]"))
	assert.Equal(t, "abc", q.Get("page[after]"))
}

func TestOffsetPaginationTags(t *testing.T) {
	q := rest.OffsetPagination{}.Query(ports.ListOptions{PageSize: 10, Tags: []string{"team-a", "prod"}})
	assert.Equal(t, "10", q.Get("size"))
	assert.Equal(t, "team-a,prod", q.Get("tags"))
	assert.Empty(t, q.Get("offset"))

	assert.Empty(t, rest.OffsetPagination{}.Query(ports.ListOptions{}).Encode())
}
