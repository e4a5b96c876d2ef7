package aws

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"github.com/imrishuroy/go-quote-service/internal/events"
)

type mockCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, params)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestRecordQuoteEvent_Created(t *testing.T) {
	mock := &mockCloudWatch{}
	m := NewMetricsEmitter(mock, "QuoteService")

	err := m.RecordQuoteEvent(context.Background(), events.QuoteEvent{
		Type:       events.TypeQuoteCreated,
		QuoteID:    "q-1",
		Status:     "draft",
		Total:      42.5,
		OccurredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := mock.inputs[0]
	if *in.Namespace != "QuoteService" {
		t.Fatalf("namespace mismatch: %s", *in.Namespace)
	}
	if len(in.MetricData) != 2 {
		t.Fatalf("expected count + value, got %d datums", len(in.MetricData))
	}
	if *in.MetricData[0].MetricName != "QuotesCreated" || *in.MetricData[0].Value != 1 {
		t.Fatalf("unexpected count datum: %+v", in.MetricData[0])
	}
	if *in.MetricData[1].MetricName != "QuoteValue" || *in.MetricData[1].Value != 42.5 {
		t.Fatalf("unexpected value datum: %+v", in.MetricData[1])
	}
}

func TestRecordQuoteEvent_DeletedHasNoValue(t *testing.T) {
	mock := &mockCloudWatch{}
	m := NewMetricsEmitter(mock, "QuoteService")

	if err := m.RecordQuoteEvent(context.Background(), events.QuoteEvent{Type: events.TypeQuoteDeleted, QuoteID: "q-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.inputs[0].MetricData) != 1 {
		t.Fatalf("expected only the count datum, got %+v", mock.inputs[0].MetricData)
	}
}

func TestRecordQuoteEvent_UnknownType(t *testing.T) {
	m := NewMetricsEmitter(&mockCloudWatch{}, "QuoteService")
	if err := m.RecordQuoteEvent(context.Background(), events.QuoteEvent{Type: "quote.archived"}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
