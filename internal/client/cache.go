package client

import (
	"context"
	"sync"
	"time"

	"github.com/imrishuroy/go-quote-service/internal/quotes"
)

// CacheConfig controls WithCache.
type CacheConfig struct {
	TTL time.Duration
}

type cacheEntry struct {
	list    []quotes.Quote
	quote   quotes.Quote
	expires time.Time
}

type cacheClient struct {
	next Client
	ttl  time.Duration
	now  func() time.Time

	mu sync.Mutex
	// gen counts invalidations; a read that started under an older gen is
	// not cached.
	gen  uint64
	list *cacheEntry
	byID map[string]*cacheEntry
}

// WithCache caches List and Get results for cfg.TTL. Any mutation drops the
// whole cache.
func WithCache(next Client, cfg CacheConfig) Client {
	return &cacheClient{
		next: next,
		ttl:  cfg.TTL,
		now:  time.Now,
		byID: map[string]*cacheEntry{},
	}
}

func (c *cacheClient) List(ctx context.Context) ([]quotes.Quote, error) {
	c.mu.Lock()
	if e := c.list; e != nil && c.now().Before(e.expires) {
		out := cloneAll(e.list)
		c.mu.Unlock()
		return out, nil
	}
	gen := c.gen
	c.mu.Unlock()

	out, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if gen == c.gen {
		c.list = &cacheEntry{list: cloneAll(out), expires: c.now().Add(c.ttl)}
	}
	c.mu.Unlock()
	return out, nil
}

func (c *cacheClient) Get(ctx context.Context, id string) (quotes.Quote, error) {
	c.mu.Lock()
	if e, ok := c.byID[id]; ok && c.now().Before(e.expires) {
		q := e.quote.Clone()
		c.mu.Unlock()
		return q, nil
	}
	gen := c.gen
	c.mu.Unlock()

	q, err := c.next.Get(ctx, id)
	if err != nil {
		return q, err
	}
	c.mu.Lock()
	if gen == c.gen {
		c.byID[id] = &cacheEntry{quote: q.Clone(), expires: c.now().Add(c.ttl)}
	}
	c.mu.Unlock()
	return q, nil
}

func (c *cacheClient) Create(ctx context.Context, in QuoteRequest) (quotes.Quote, error) {
	defer c.invalidate()
	return c.next.Create(ctx, in)
}

func (c *cacheClient) Update(ctx context.Context, id string, in QuoteRequest) (quotes.Quote, error) {
	defer c.invalidate()
	return c.next.Update(ctx, id, in)
}

func (c *cacheClient) Delete(ctx context.Context, id string) error {
	defer c.invalidate()
	return c.next.Delete(ctx, id)
}

func (c *cacheClient) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.list = nil
	c.byID = map[string]*cacheEntry{}
}

func cloneAll(in []quotes.Quote) []quotes.Quote {
	out := make([]quotes.Quote, len(in))
	for i, q := range in {
		out[i] = q.Clone()
	}
	return out
}
