package events

import (
	"context"
	"time"

	"github.com/imrishuroy/go-quote-service/internal/quotes"
)

// Event types
const (
	TypeQuoteCreated = "quote.created"
	TypeQuoteUpdated = "quote.updated"
	TypeQuoteDeleted = "quote.deleted"
)

// QuoteEvent is the payload sent from API -> SQS -> worker.
type QuoteEvent struct {
	Type          string    `json:"type"`
	QuoteID       string    `json:"quote_id"`
	Status        string    `json:"status,omitempty"`
	Total         float64   `json:"total"`
	ProductCount  int       `json:"product_count"`
	OccurredAt    time.Time `json:"occurred_at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// NewQuoteEvent builds an event describing q.
func NewQuoteEvent(eventType string, q quotes.Quote, correlationID string, at time.Time) QuoteEvent {
	return QuoteEvent{
		Type:          eventType,
		QuoteID:       q.ID,
		Status:        q.Status,
		Total:         q.Total,
		ProductCount:  len(q.Products),
		OccurredAt:    at.UTC(),
		CorrelationID: correlationID,
	}
}

// Publisher delivers quote events.
type Publisher interface {
	Publish(ctx context.Context, ev QuoteEvent) error
}

// NopPublisher drops every event. Used when no queue is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, QuoteEvent) error { return nil }
