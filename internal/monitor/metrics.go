package monitor

import (
	"context"
	"math"
	"slices"
	"time"

	"servermonitor/api"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Query window for instance metrics. Not configurable.
const (
	MetricsWindow = time.Hour
	MetricsPeriod = 300 * time.Second

	metricsNamespace = "AWS/EC2"
)

// InstanceMetrics holds the three tracked series for one instance
type InstanceMetrics struct {
	CPUUtilization []api.MetricPoint
	NetworkIn      []api.MetricPoint
	NetworkOut     []api.MetricPoint
}

type trackedMetric struct {
	name string
	unit string
	dest func(*InstanceMetrics) *[]api.MetricPoint
}

var trackedMetrics = []trackedMetric{
	{"CPUUtilization", "%", func(m *InstanceMetrics) *[]api.MetricPoint { return &m.CPUUtilization }},
	{"NetworkIn", "B", func(m *InstanceMetrics) *[]api.MetricPoint { return &m.NetworkIn }},
	{"NetworkOut", "B", func(m *InstanceMetrics) *[]api.MetricPoint { return &m.NetworkOut }},
}

// Metrics queries CPU and network statistics for the trailing hour in
// five-minute buckets. The queries run concurrently and never wait behind
// another call's queries; the first failure fails the whole call.
func (s *Service) Metrics(ctx context.Context, instanceID string) (*InstanceMetrics, error) {
	end := s.now().UTC()
	start := end.Add(-MetricsWindow)

	result := &InstanceMetrics{}
	group := s.queries.NewGroup()
	for _, m := range trackedMetrics {
		dest := m.dest(result)
		group.SubmitErr(func() error {
			points, err := s.queryMetric(ctx, instanceID, m, start, end)
			if err != nil {
				return err
			}
			*dest = points
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) queryMetric(ctx context.Context, instanceID string, m trackedMetric, start, end time.Time) ([]api.MetricPoint, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	out, err := s.metrics.GetMetricStatistics(callCtx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(metricsNamespace),
		MetricName: aws.String(m.name),
		Dimensions: []types.Dimension{
			{Name: aws.String("InstanceId"), Value: aws.String(instanceID)},
		},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(int32(MetricsPeriod / time.Second)),
		Statistics: []types.Statistic{types.StatisticAverage},
	})
	if err != nil {
		return nil, providerError("GetMetricStatistics/"+m.name, LabelMetrics, instanceID, err)
	}
	return FormatMetrics(out.Datapoints, m.unit), nil
}

// FormatMetrics sorts datapoints by timestamp and reduces each one to its
// clock time, value and unit. Average is preferred over Sum; values are
// rounded to two decimals. The input slice is not modified.
func FormatMetrics(datapoints []types.Datapoint, unit string) []api.MetricPoint {
	sorted := slices.Clone(datapoints)
	slices.SortStableFunc(sorted, func(a, b types.Datapoint) int {
		return aws.ToTime(a.Timestamp).Compare(aws.ToTime(b.Timestamp))
	})

	points := make([]api.MetricPoint, 0, len(sorted))
	for _, dp := range sorted {
		points = append(points, api.MetricPoint{
			Timestamp: aws.ToTime(dp.Timestamp).UTC().Format("15:04"),
			Value:     round2(datapointValue(dp)),
			Unit:      unit,
		})
	}
	return points
}

func datapointValue(dp types.Datapoint) float64 {
	if dp.Average != nil {
		return *dp.Average
	}
	return aws.ToFloat64(dp.Sum)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
