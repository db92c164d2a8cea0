package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics publishes application metrics to CloudWatch. Datapoints are
// buffered and flushed in batches to keep PutMetricData calls off the
// request path.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	logger    *zap.Logger

	mu     sync.Mutex
	buffer []types.MetricDatum
}

// flushThreshold is the CloudWatch PutMetricData batch ceiling.
const flushThreshold = 20

// NewMetrics creates a CloudWatch metrics publisher. A nil client produces
// a no-op publisher for local development.
func NewMetrics(namespace string, client *cloudwatch.Client) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    zap.NewNop(),
	}
}

// WithLogger attaches a logger for flush failures.
func (m *Metrics) WithLogger(logger *zap.Logger) *Metrics {
	m.logger = logger
	return m
}

// Count records a count metric with optional dimensions.
func (m *Metrics) Count(ctx context.Context, name string, value float64, dims map[string]string) {
	m.record(ctx, name, value, types.StandardUnitCount, dims)
}

// Duration records a latency metric in milliseconds.
func (m *Metrics) Duration(ctx context.Context, name string, d time.Duration, dims map[string]string) {
	m.record(ctx, name, float64(d.Milliseconds()), types.StandardUnitMilliseconds, dims)
}

func (m *Metrics) record(ctx context.Context, name string, value float64, unit types.StandardUnit, dims map[string]string) {
	if m.client == nil {
		return
	}

	datum := types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(time.Now()),
	}
	for k, v := range dims {
		datum.Dimensions = append(datum.Dimensions, types.Dimension{
			Name:  aws.String(k),
			Value: aws.String(v),
		})
	}

	m.mu.Lock()
	m.buffer = append(m.buffer, datum)
	shouldFlush := len(m.buffer) >= flushThreshold
	m.mu.Unlock()

	if shouldFlush {
		m.Flush(ctx)
	}
}

// Flush publishes all buffered datapoints. Lambda handlers call this before
// returning so metrics survive the freeze between invocations.
func (m *Metrics) Flush(ctx context.Context) {
	if m.client == nil {
		return
	}

	m.mu.Lock()
	batch := m.buffer
	m.buffer = nil
	m.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: batch,
	})
	if err != nil {
		m.logger.Warn("failed to publish metrics", zap.Error(err), zap.Int("datapoints", len(batch)))
	}
}
