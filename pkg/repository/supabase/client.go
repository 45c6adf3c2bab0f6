// Package supabase implements the data-access ports against a Supabase project:
// PostgREST tables under /rest/v1 and GoTrue auth under /auth/v1.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lavapp/pkg/repository"
)

// maxErrorBody caps how much of a failed response is kept in the error message.
const maxErrorBody = 512

// Client is a Supabase REST API client.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// Config holds client configuration.
type Config struct {
	URL        string
	AnonKey    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// New creates a new Supabase client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("supabase anon key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = repository.DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.AnonKey,
		timeout:    timeout,
		httpClient: httpClient,
	}, nil
}

// Response is a raw API response.
type Response struct {
	StatusCode int
	Body       []byte
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// APIError is a non-2xx answer from Supabase.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase error (status %d): %s", e.StatusCode, e.Message)
}

// Error returns an *APIError if the response indicates failure.
func (r *Response) Error() error {
	if r.StatusCode < 400 {
		return nil
	}
	var errResp struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(r.Body, &errResp); err == nil {
		for _, m := range []string{errResp.Message, errResp.Msg, errResp.ErrorDescription, errResp.Error} {
			if m != "" {
				return &APIError{StatusCode: r.StatusCode, Message: m}
			}
		}
	}
	body := r.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &APIError{StatusCode: r.StatusCode, Message: strings.TrimSpace(string(body))}
}

// request performs one call. The caller's access token, when present in ctx,
// replaces the anon key in Authorization so row-level security applies.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body any, headers map[string]string) (*Response, error) {
	ctx, cancel := repository.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if token := repository.AccessTokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	out := &Response{StatusCode: resp.StatusCode, Body: data}
	if err := out.Error(); err != nil {
		return nil, err
	}
	return out, nil
}

// rest calls a PostgREST table endpoint.
func (c *Client) rest(ctx context.Context, method, table string, query url.Values, body any) (*Response, error) {
	var headers map[string]string
	if method != http.MethodGet {
		headers = map[string]string{"Prefer": "return=representation"}
	}
	return c.request(ctx, method, "/rest/v1/"+url.PathEscape(table), query, body, headers)
}

// Query builds PostgREST filter parameters.
type Query struct {
	values url.Values
}

func NewQuery() *Query {
	return &Query{values: url.Values{}}
}

// Eq adds an equality filter.
func (q *Query) Eq(column, value string) *Query {
	q.values.Add(column, "eq."+value)
	return q
}

// Order adds an ORDER BY clause.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "asc"
	if !ascending {
		dir = "desc"
	}
	q.values.Set("order", column+"."+dir)
	return q
}

// Select sets the returned columns.
func (q *Query) Select(columns string) *Query {
	q.values.Set("select", columns)
	return q
}

func (q *Query) Values() url.Values {
	return q.values
}
