// Package notion is a minimal client for the Notion REST API: database queries,
// page retrieval and recursive block fetches, decoded into content.Block trees.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"git.home.luguber.info/inful/notionsync/internal/config"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
	"git.home.luguber.info/inful/notionsync/internal/retry"
	"git.home.luguber.info/inful/notionsync/internal/version"
)

// Client talks to one Notion database.
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
	apiVersion string

	databaseID      string
	pageSize        int
	publishedStatus string
	policy          retry.Policy
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy overrides the retry policy for transient failures.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// New builds a client from the notion configuration section.
func New(cfg config.NotionConfig, opts ...Option) *Client {
	c := &Client{
		httpClient:      &http.Client{Timeout: cfg.TimeoutDuration()},
		apiURL:          cfg.APIURL,
		token:           cfg.Token,
		apiVersion:      cfg.APIVersion,
		databaseID:      cfg.DatabaseID,
		pageSize:        cfg.PageSize,
		publishedStatus: cfg.PublishedStatus,
		policy:          retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newRequest builds a request against an endpoint relative to the API URL.
// Query strings in the endpoint are preserved.
func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	cleanEndpoint := strings.TrimPrefix(endpoint, "/")
	var rawQuery string
	if idx := strings.Index(cleanEndpoint, "?"); idx != -1 {
		rawQuery = cleanEndpoint[idx+1:]
		cleanEndpoint = cleanEndpoint[:idx]
	}

	u, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, errors.NotionError("failed to parse API URL").
			WithCause(err).
			WithContext("api_url", c.apiURL).
			Build()
	}
	u.Path = path.Join(strings.TrimSuffix(u.Path, "/"), cleanEndpoint)
	u.RawQuery = rawQuery

	reader := io.Reader(http.NoBody)
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errors.NotionError("failed to marshal request body").WithCause(err).Build()
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, errors.NotionError("failed to create request").
			WithCause(err).
			WithContext("method", method).
			WithContext("url", u.String()).
			Build()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.apiVersion)
	req.Header.Set("User-Agent", version.UserAgent())
	return req, nil
}

// do sends one request under the retry policy and decodes the JSON response into result.
func (c *Client) do(ctx context.Context, method, endpoint string, body, result any) error {
	return retry.Do(ctx, c.policy, func(ctx context.Context) error {
		req, err := c.newRequest(ctx, method, endpoint, body)
		if err != nil {
			return err
		}
		return c.doRequest(req, result)
	})
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NetworkError("failed to execute Notion request").
			WithCause(err).
			WithContext("method", req.Method).
			WithContext("url", req.URL.String()).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		limitedBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return statusError(req, resp, strings.ReplaceAll(string(limitedBody), "\n", " "))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return errors.NotionError("failed to decode response").
				WithCause(err).
				WithContext("url", req.URL.String()).
				Build()
		}
	}
	return nil
}

// statusError classifies an HTTP error status. Rate limits and server errors are retryable.
func statusError(req *http.Request, resp *http.Response, body string) error {
	var b *errors.ErrorBuilder
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		b = errors.AuthError("Notion rejected the integration token")
	case resp.StatusCode == http.StatusNotFound:
		b = errors.NotFoundError("Notion object not found")
	case resp.StatusCode == http.StatusTooManyRequests:
		b = errors.NotionError("Notion rate limit exceeded").RateLimit()
	case resp.StatusCode >= 500:
		b = errors.NotionError(fmt.Sprintf("Notion API error: %s", resp.Status)).Retryable()
	default:
		b = errors.NotionError(fmt.Sprintf("Notion API error: %s", resp.Status))
	}
	return b.WithContext("status", resp.Status).
		WithContext("code", resp.StatusCode).
		WithContext("url", req.URL.String()).
		WithContext("response", body).
		Build()
}
