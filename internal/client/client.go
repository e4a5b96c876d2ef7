// Package client is a Go client for the quote HTTP API.
package client

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

	"github.com/imrishuroy/go-quote-service/internal/quotes"
)

// Client is the quote API surface. Decorators in this package wrap it.
type Client interface {
	List(ctx context.Context) ([]quotes.Quote, error)
	Get(ctx context.Context, id string) (quotes.Quote, error)
	Create(ctx context.Context, in QuoteRequest) (quotes.Quote, error)
	Update(ctx context.Context, id string, in QuoteRequest) (quotes.Quote, error)
	Delete(ctx context.Context, id string) error
}

// QuoteRequest is the body for create and update. Empty fields are omitted,
// which makes it a partial update on PUT.
type QuoteRequest struct {
	CustomerName string           `json:"customerName,omitempty"`
	Products     []quotes.Product `json:"products,omitempty"`
	Date         *time.Time       `json:"date,omitempty"`
	Status       string           `json:"status,omitempty"`
	Notes        string           `json:"notes,omitempty"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string // validation failures, if any
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("quote api: %d %s", e.StatusCode, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+": "+v)
	}
	return fmt.Sprintf("quote api: %d %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

// HTTPClient talks to the API over HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// New returns an HTTPClient for baseURL, e.g. http://localhost:3001/api.
// A nil httpClient gets a 15s timeout default.
func New(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *HTTPClient) List(ctx context.Context) ([]quotes.Quote, error) {
	var out []quotes.Quote
	if err := c.do(ctx, http.MethodGet, "/quotes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Get(ctx context.Context, id string) (quotes.Quote, error) {
	var out quotes.Quote
	err := c.do(ctx, http.MethodGet, "/quotes/"+url.PathEscape(id), nil, &out)
	return out, err
}

// Create posts a new quote. An idempotency key in ctx is sent as Idempotency-Key.
func (c *HTTPClient) Create(ctx context.Context, in QuoteRequest) (quotes.Quote, error) {
	var out quotes.Quote
	err := c.do(ctx, http.MethodPost, "/quotes", in, &out)
	return out, err
}

func (c *HTTPClient) Update(ctx context.Context, id string, in QuoteRequest) (quotes.Quote, error) {
	var out quotes.Quote
	err := c.do(ctx, http.MethodPut, "/quotes/"+url.PathEscape(id), in, &out)
	return out, err
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/quotes/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key := idempotencyKey(ctx); key != "" && method == http.MethodPost {
		req.Header.Set("Idempotency-Key", key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Fields = body.Errors
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

type ctxKey struct{}

// WithIdempotencyKey attaches key to ctx so Create sends it.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ctxKey{}, key)
}

func idempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(ctxKey{}).(string)
	return key
}
