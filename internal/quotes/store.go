package quotes

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the in-memory quote repository. It is the only owner of quote data:
// every value it returns is a copy.
type Store struct {
	mu      sync.Mutex
	quotes  []Quote
	nowFunc func() time.Time
	newID   func() string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		nowFunc: time.Now,
		newID:   uuid.NewString,
	}
}

// Create assigns an id, defaults date and status, computes the total and
// appends the quote. Any caller-supplied total is never consulted.
func (s *Store) Create(in NewQuote) Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := Quote{
		ID:           s.newID(),
		CustomerName: in.CustomerName,
		Products:     cloneProducts(in.Products),
		Date:         in.Date,
		Status:       in.Status,
	}
	if q.Date.IsZero() {
		q.Date = s.nowFunc().UTC()
	}
	if q.Status == "" {
		q.Status = StatusDraft
	}
	if in.Notes != nil {
		q.Notes = *in.Notes
	}
	q.Total = Total(q.Products)

	s.quotes = append(s.quotes, q)
	return q.Clone()
}

// FindByID returns the quote with the given id. ok is false when absent.
func (s *Store) FindByID(id string) (q Quote, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Quote{}, false
	}
	return s.quotes[i].Clone(), true
}

// FindAll returns every quote in insertion order. The result is never nil.
func (s *Store) FindAll() []Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		out = append(out, q.Clone())
	}
	return out
}

// Update merges the supplied fields onto an existing quote. Products replace the
// whole sequence and trigger a total recomputation. ok is false when absent.
func (s *Store) Update(id string, p QuotePatch) (q Quote, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Quote{}, false
	}

	cur := s.quotes[i]
	if p.CustomerName != nil {
		cur.CustomerName = *p.CustomerName
	}
	if p.Products != nil {
		cur.Products = cloneProducts(p.Products)
		cur.Total = Total(cur.Products)
	}
	if p.Date != nil {
		cur.Date = *p.Date
	}
	if p.Status != nil {
		cur.Status = *p.Status
	}
	if p.Notes != nil {
		cur.Notes = *p.Notes
	}

	s.quotes[i] = cur
	return cur.Clone(), true
}

// Delete removes the quote. It reports whether a quote was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.quotes = append(s.quotes[:i], s.quotes[i+1:]...)
	return true
}

// Len returns the number of stored quotes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.quotes)
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id string) int {
	for i := range s.quotes {
		if s.quotes[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy of q that shares no memory with it.
func (q Quote) Clone() Quote {
	q.Products = cloneProducts(q.Products)
	return q
}

func cloneProducts(in []Product) []Product {
	if in == nil {
		return nil
	}
	out := make([]Product, len(in))
	copy(out, in)
	return out
}
