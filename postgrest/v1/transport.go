package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultTimeout applies to data-plane calls.
	DefaultTimeout = 30 * time.Second
	// LoggingTimeout applies to non-critical mirror/log calls.
	LoggingTimeout = 5 * time.Second
)

type Response struct {
	Data []byte
}

// APIError is a non-2xx reply from the data API, body included verbatim
// because PostgREST puts the constraint/procedure detail there.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("data api returned status %d: %s", e.Status, e.Body)
}

// Transport handles low-level HTTP and authentication against the
// PostgREST data API. Filters are passed as query params in PostgREST
// operator syntax, e.g. {"id": "eq.42", "status": "not.in.(completed,cancelled)"}.
type Transport struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
}

// NewTransport creates a transport with base URL and service auth token
func NewTransport(baseURL, token string) *Transport {
	return &Transport{
		BaseURL:    baseURL,
		AuthToken:  token,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithTimeout returns a copy of the transport with its own client timeout.
// Used for fire-and-forget logging calls that must not hold a request open.
func (t *Transport) WithTimeout(d time.Duration) *Transport {
	return &Transport{
		BaseURL:    t.BaseURL,
		AuthToken:  t.AuthToken,
		HTTPClient: &http.Client{Timeout: d},
	}
}

// helper: build full URL with query params
func (t *Transport) buildURL(path string, query map[string]string) string {
	u, _ := url.Parse(t.BaseURL + path)
	q := u.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (t *Transport) do(ctx context.Context, method, path string, body any, query map[string]string, headers map[string]string) (*Response, error) {
	fullURL := t.buildURL(path, query)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if t.AuthToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", t.AuthToken))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	return &Response{Data: data}, nil
}

// Get fetches rows matching the filter query params.
func (t *Transport) Get(ctx context.Context, path string, query map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodGet, path, nil, query, nil)
}

// Post inserts a row and asks PostgREST to return the inserted representation.
func (t *Transport) Post(ctx context.Context, path string, data any, query map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodPost, path, data, query, map[string]string{
		"Prefer": "return=representation",
	})
}

// Patch partially updates rows matching the filter and returns them.
func (t *Transport) Patch(ctx context.Context, path string, data any, query map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodPatch, path, data, query, map[string]string{
		"Prefer": "return=representation",
	})
}

// Delete removes rows matching the filter.
func (t *Transport) Delete(ctx context.Context, path string, query map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodDelete, path, nil, query, nil)
}

// Rpc invokes a named server-side procedure. Multi-table writes that must
// be atomic live behind these procedures; the transport treats them as an
// opaque call with JSON params in and a JSON result out.
func (t *Transport) Rpc(ctx context.Context, name string, params any) (*Response, error) {
	return t.do(ctx, http.MethodPost, "/rpc/"+name, params, nil, nil)
}
