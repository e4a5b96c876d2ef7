package main

import (
	"context"
	"encoding/json"
	"fmt"

	lambdaevents "github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-quote-service/internal/events"
	"github.com/imrishuroy/go-quote-service/internal/logger"
)

// MetricsRecorder is satisfied by aws.MetricsEmitter.
type MetricsRecorder interface {
	RecordQuoteEvent(ctx context.Context, ev events.QuoteEvent) error
}

// Processor consumes quote lifecycle events from SQS.
type Processor struct {
	metrics MetricsRecorder
	log     *logger.Logger
}

// NewProcessor creates a worker processor with its metrics sink injected.
func NewProcessor(m MetricsRecorder, log *logger.Logger) *Processor {
	return &Processor{metrics: m, log: log}
}

// Handle receives an SQS batch and processes each message. The first failure
// is returned so Lambda retries the batch and, eventually, dead-letters it.
func (p *Processor) Handle(ctx context.Context, ev lambdaevents.SQSEvent) error {
	p.log.Debug().Int("records", len(ev.Records)).Msg("received SQS batch")
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.log.Error().Err(err).Str("message_id", rec.MessageId).Msg("worker error")
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec lambdaevents.SQSMessage) error {
	var ev events.QuoteEvent
	if err := json.Unmarshal([]byte(rec.Body), &ev); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if ev.QuoteID == "" {
		return fmt.Errorf("invalid message body: missing quote_id")
	}

	p.log.Info().
		Str("event_type", ev.Type).
		Str("quote_id", ev.QuoteID).
		Str("status", ev.Status).
		Float64("total", ev.Total).
		Str("correlation_id", ev.CorrelationID).
		Msg("quote event")

	if err := p.metrics.RecordQuoteEvent(ctx, ev); err != nil {
		return fmt.Errorf("record metrics for quote=%s: %w", ev.QuoteID, err)
	}
	return nil
}
