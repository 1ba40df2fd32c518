package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// putBatchSize is the CloudWatch PutMetricData datum limit
const putBatchSize = 20

// Metrics records operational metrics to CloudWatch. Data points are
// buffered and flushed in batches; recording never blocks a request on
// a CloudWatch call.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client

	mu     sync.Mutex
	buffer []types.MetricDatum
}

// NewMetrics creates a metrics recorder for the given namespace
func NewMetrics(namespace string, client *cloudwatch.Client) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		buffer:    make([]types.MetricDatum, 0, putBatchSize),
	}
}

// CountOperation increments a counter for a named operation
func (m *Metrics) CountOperation(operation string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.record(types.MetricDatum{
		MetricName: aws.String("OperationCount"),
		Value:      aws.Float64(1),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: []types.Dimension{
			{Name: aws.String("Operation"), Value: aws.String(operation)},
			{Name: aws.String("Outcome"), Value: aws.String(outcome)},
		},
	})
}

// RecordAnalysis records one analysis attempt with its provider,
// outcome, and latency
func (m *Metrics) RecordAnalysis(provider string, success bool, elapsed time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	dimensions := []types.Dimension{
		{Name: aws.String("Provider"), Value: aws.String(provider)},
		{Name: aws.String("Outcome"), Value: aws.String(outcome)},
	}

	m.record(types.MetricDatum{
		MetricName: aws.String("AnalysisCount"),
		Value:      aws.Float64(1),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: dimensions,
	})
	m.record(types.MetricDatum{
		MetricName: aws.String("AnalysisLatency"),
		Value:      aws.Float64(float64(elapsed.Milliseconds())),
		Unit:       types.StandardUnitMilliseconds,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: dimensions,
	})
}

// RecordDuration records the latency of a named operation
func (m *Metrics) RecordDuration(operation string, elapsed time.Duration) {
	m.record(types.MetricDatum{
		MetricName: aws.String("OperationLatency"),
		Value:      aws.Float64(float64(elapsed.Milliseconds())),
		Unit:       types.StandardUnitMilliseconds,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: []types.Dimension{
			{Name: aws.String("Operation"), Value: aws.String(operation)},
		},
	})
}

func (m *Metrics) record(datum types.MetricDatum) {
	m.mu.Lock()
	m.buffer = append(m.buffer, datum)
	shouldFlush := len(m.buffer) >= putBatchSize
	m.mu.Unlock()

	if shouldFlush {
		go m.Flush(context.Background())
	}
}

// Flush sends all buffered data points to CloudWatch
func (m *Metrics) Flush(ctx context.Context) error {
	m.mu.Lock()
	if len(m.buffer) == 0 {
		m.mu.Unlock()
		return nil
	}
	batch := m.buffer
	m.buffer = make([]types.MetricDatum, 0, putBatchSize)
	m.mu.Unlock()

	for start := 0; start < len(batch); start += putBatchSize {
		end := start + putBatchSize
		if end > len(batch) {
			end = len(batch)
		}
		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: batch[start:end],
		})
		if err != nil {
			return err
		}
	}
	return nil
}
