package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/imrishuroy/go-quote-service/internal/events"
)

// MetricsEmitter turns quote events into CloudWatch metric data.
type MetricsEmitter struct {
	CloudWatch CloudWatchAPI
	Namespace  string
}

// NewMetricsEmitter returns an emitter writing to namespace.
func NewMetricsEmitter(cw CloudWatchAPI, namespace string) *MetricsEmitter {
	return &MetricsEmitter{CloudWatch: cw, Namespace: namespace}
}

var eventMetricNames = map[string]string{
	events.TypeQuoteCreated: "QuotesCreated",
	events.TypeQuoteUpdated: "QuotesUpdated",
	events.TypeQuoteDeleted: "QuotesDeleted",
}

// RecordQuoteEvent emits a count for the event type and, for creates and
// updates, the quote value dimensioned by status.
func (m *MetricsEmitter) RecordQuoteEvent(ctx context.Context, ev events.QuoteEvent) error {
	name, ok := eventMetricNames[ev.Type]
	if !ok {
		return fmt.Errorf("unknown event type %q", ev.Type)
	}

	ts := ev.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	data := []cwtypes.MetricDatum{
		{
			MetricName: awsString(name),
			Timestamp:  &ts,
			Unit:       cwtypes.StandardUnitCount,
			Value:      float64Ptr(1),
		},
	}
	if ev.Type != events.TypeQuoteDeleted {
		data = append(data, cwtypes.MetricDatum{
			MetricName: awsString("QuoteValue"),
			Timestamp:  &ts,
			Unit:       cwtypes.StandardUnitNone,
			Value:      float64Ptr(ev.Total),
			Dimensions: []cwtypes.Dimension{
				{Name: awsString("Status"), Value: awsString(ev.Status)},
			},
		})
	}

	_, err := m.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  &m.Namespace,
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

func float64Ptr(f float64) *float64 { return &f }
