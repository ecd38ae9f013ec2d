// Package rest implements entity managers over a JSON admin API.
package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/olusolaa/gateway-sync/internal/core/ports"
	"github.com/olusolaa/gateway-sync/internal/errors"
)

const DefaultTimeout = 30 * time.Second

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ClientConfig describes one admin API endpoint.
type ClientConfig struct {
	// System names the endpoint in errors and logs.
	System  string
	BaseURL string
	// AuthHeader carries Token; "Authorization" tokens get a Bearer prefix.
	AuthHeader string
	Token      string
	Timeout    time.Duration
	UserAgent  string
}

// Client issues JSON requests against one base URL. Every request waits on
// the injected limiter first.
type Client struct {
	cfg     ClientConfig
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	logger  ports.Logger
}

func NewClient(cfg ClientConfig, httpClient *http.Client, limiter *rate.Limiter, logger ports.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation,
			fmt.Sprintf("invalid %s URL '%s'", cfg.System, cfg.BaseURL), "Use an absolute http(s) URL.")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:     cfg,
		base:    base,
		http:    httpClient,
		limiter: limiter,
		logger:  logger.WithFields(map[string]any{"system": cfg.System}),
	}, nil
}

func (c *Client) System() string {
	return c.cfg.System
}

// Resolve builds an absolute URL from a path relative to the base URL.
func (c *Client) Resolve(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimSuffix(c.base.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Do sends one request and decodes a 2xx JSON body into out when out is not
// nil. subject describes the addressed entity for error messages.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any, subject string) error {
	if err := wait(ctx, c.limiter, c.logger); err != nil {
		return HandleTransportError(ctx, c.cfg.System, subject, err)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.CodeValidation, fmt.Sprintf("failed to encode %s", subject))
		}
		reader = bytes.NewReader(raw)
	}

	target := c.Resolve(path, query)
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, fmt.Sprintf("failed to build request for %s", subject))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.Token != "" {
		header := c.cfg.AuthHeader
		if header == "" {
			header = "Authorization"
		}
		value := c.cfg.Token
		if strings.EqualFold(header, "Authorization") && !strings.HasPrefix(value, "Bearer ") {
			value = "Bearer " + value
		}
		req.Header.Set(header, value)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return HandleTransportError(ctx, c.cfg.System, subject, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return HandleTransportError(ctx, c.cfg.System, subject, err)
	}
	c.logger.Debugf(ctx, "%s %s -> %d (%s)", method, req.URL.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return HandleStatus(c.cfg.System, subject, resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, errors.CodePlatformAPIError,
			fmt.Sprintf("failed to decode %s response for %s", c.cfg.System, subject))
	}
	return nil
}
