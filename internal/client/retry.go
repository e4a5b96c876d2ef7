package client

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/go-quote-service/internal/quotes"
)

// RetryConfig controls WithRetry. Backoff grows linearly: Backoff, 2*Backoff, ...
type RetryConfig struct {
	Retries int
	Backoff time.Duration
}

type retryClient struct {
	next Client
	cfg  RetryConfig
}

// WithRetry retries transport errors and 5xx answers. Creates carry a single
// Idempotency-Key across attempts so a retried POST is not applied twice.
func WithRetry(next Client, cfg RetryConfig) Client {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &retryClient{next: next, cfg: cfg}
}

func (r *retryClient) List(ctx context.Context) ([]quotes.Quote, error) {
	var out []quotes.Quote
	err := r.retry(ctx, func() (err error) {
		out, err = r.next.List(ctx)
		return err
	})
	return out, err
}

func (r *retryClient) Get(ctx context.Context, id string) (quotes.Quote, error) {
	var out quotes.Quote
	err := r.retry(ctx, func() (err error) {
		out, err = r.next.Get(ctx, id)
		return err
	})
	return out, err
}

func (r *retryClient) Create(ctx context.Context, in QuoteRequest) (quotes.Quote, error) {
	if idempotencyKey(ctx) == "" {
		ctx = WithIdempotencyKey(ctx, uuid.NewString())
	}
	var out quotes.Quote
	err := r.retry(ctx, func() (err error) {
		out, err = r.next.Create(ctx, in)
		return err
	})
	return out, err
}

func (r *retryClient) Update(ctx context.Context, id string, in QuoteRequest) (quotes.Quote, error) {
	var out quotes.Quote
	err := r.retry(ctx, func() (err error) {
		out, err = r.next.Update(ctx, id, in)
		return err
	})
	return out, err
}

func (r *retryClient) Delete(ctx context.Context, id string) error {
	return r.retry(ctx, func() error {
		return r.next.Delete(ctx, id)
	})
}

func (r *retryClient) retry(ctx context.Context, call func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = call()
		if err == nil || !retryable(err) || attempt >= r.cfg.Retries {
			return err
		}

		t := time.NewTimer(r.cfg.Backoff * time.Duration(attempt+1))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// retryable reports whether err is worth another attempt: transport failures
// and server errors, never 4xx.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return true
}
