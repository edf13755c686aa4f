package monitor_test

import (
	"context"
	"sync"
	"time"

	"servermonitor/internal/monitor"
	"servermonitor/internal/provider/providertest"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/smithy-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func at(hour, minute int) *time.Time {
	return aws.Time(time.Date(2025, 3, 14, hour, minute, 0, 0, time.UTC))
}

var _ = Describe("FormatMetrics", func() {
	It("returns an empty slice for no datapoints", func() {
		Expect(monitor.FormatMetrics(nil, "%")).To(BeEmpty())
		Expect(monitor.FormatMetrics([]types.Datapoint{}, "%")).To(BeEmpty())
	})

	It("prefers Average and rounds to two decimals", func() {
		points := monitor.FormatMetrics([]types.Datapoint{
			{Timestamp: at(9, 5), Average: aws.Float64(12.3456), Sum: aws.Float64(99)},
		}, "%")

		Expect(points).To(HaveLen(1))
		Expect(points[0].Timestamp).To(Equal("09:05"))
		Expect(points[0].Value).To(Equal(12.35))
		Expect(points[0].Unit).To(Equal("%"))
	})

	It("falls back to Sum when Average is absent", func() {
		points := monitor.FormatMetrics([]types.Datapoint{
			{Timestamp: at(9, 10), Sum: aws.Float64(2048.004)},
		}, "B")

		Expect(points[0].Value).To(Equal(2048.0))
		Expect(points[0].Unit).To(Equal("B"))
	})

	It("sorts by timestamp regardless of input order", func() {
		input := []types.Datapoint{
			{Timestamp: at(9, 20), Average: aws.Float64(3)},
			{Timestamp: at(9, 10), Average: aws.Float64(1)},
			{Timestamp: at(9, 15), Average: aws.Float64(2)},
		}
		points := monitor.FormatMetrics(input, "%")

		Expect(points).To(HaveLen(3))
		Expect(points[0].Timestamp).To(Equal("09:10"))
		Expect(points[1].Timestamp).To(Equal("09:15"))
		Expect(points[2].Timestamp).To(Equal("09:20"))
		Expect(input[0].Timestamp).To(Equal(at(9, 20)), "input must not be reordered")
	})

	It("formats clock time in UTC", func() {
		seoul := time.FixedZone("KST", 9*60*60)
		ts := time.Date(2025, 3, 14, 18, 30, 0, 0, seoul)
		points := monitor.FormatMetrics([]types.Datapoint{{Timestamp: &ts, Average: aws.Float64(1)}}, "%")
		Expect(points[0].Timestamp).To(Equal("09:30"))
	})
})

var _ = Describe("Metrics", func() {
	var (
		metrics *providertest.FakeMetrics
		svc     *monitor.Service
		now     time.Time
	)

	BeforeEach(func() {
		now = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
		metrics = providertest.NewFakeMetrics()
		svc = monitor.NewService(providertest.NewFakeCompute(), metrics,
			monitor.WithClock(func() time.Time { return now }))
	})

	AfterEach(func() {
		svc.Close()
	})

	It("queries the three series over the trailing hour", func() {
		metrics.Outputs["CPUUtilization"] = &cloudwatch.GetMetricStatisticsOutput{
			Datapoints: []types.Datapoint{
				{Timestamp: at(9, 55), Average: aws.Float64(40.111)},
				{Timestamp: at(9, 50), Average: aws.Float64(20.5)},
			},
		}
		metrics.Outputs["NetworkIn"] = &cloudwatch.GetMetricStatisticsOutput{
			Datapoints: []types.Datapoint{{Timestamp: at(9, 50), Average: aws.Float64(1024)}},
		}

		result, err := svc.Metrics(context.Background(), "i-123")
		Expect(err).NotTo(HaveOccurred())

		Expect(result.CPUUtilization).To(HaveLen(2))
		Expect(result.CPUUtilization[0].Value).To(Equal(20.5))
		Expect(result.CPUUtilization[1].Value).To(Equal(40.11))
		Expect(result.NetworkIn).To(HaveLen(1))
		Expect(result.NetworkIn[0].Unit).To(Equal("B"))
		Expect(result.NetworkOut).NotTo(BeNil())
		Expect(result.NetworkOut).To(BeEmpty())

		inputs := metrics.Inputs()
		Expect(inputs).To(HaveLen(3))

		names := []string{}
		for _, in := range inputs {
			names = append(names, aws.ToString(in.MetricName))
			Expect(aws.ToString(in.Namespace)).To(Equal("AWS/EC2"))
			Expect(aws.ToInt32(in.Period)).To(Equal(int32(300)))
			Expect(in.Statistics).To(ConsistOf(types.StatisticAverage))
			Expect(aws.ToTime(in.EndTime)).To(BeTemporally("==", now))
			Expect(aws.ToTime(in.StartTime)).To(BeTemporally("==", now.Add(-time.Hour)))
			Expect(in.Dimensions).To(HaveLen(1))
			Expect(aws.ToString(in.Dimensions[0].Name)).To(Equal("InstanceId"))
			Expect(aws.ToString(in.Dimensions[0].Value)).To(Equal("i-123"))
		}
		Expect(names).To(ConsistOf("CPUUtilization", "NetworkIn", "NetworkOut"))
	})

	It("fails when any query fails", func() {
		metrics.Errors["NetworkOut"] = &smithy.GenericAPIError{Code: "Throttling", Message: "Rate exceeded"}

		_, err := svc.Metrics(context.Background(), "i-123")
		Expect(err).To(MatchError(HavePrefix("CloudWatch Metric Error: ")))
		Expect(err.Error()).To(ContainSubstring("Throttling"))
	})
	It("does not queue concurrent calls behind each other", func() {
		metrics.Delay = 200 * time.Millisecond

		const callers = 4
		var wg sync.WaitGroup
		errs := make(chan error, callers)
		start := time.Now()
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				_, err := svc.Metrics(context.Background(), "i-123")
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		Expect(time.Since(start)).To(BeNumerically("<", 400*time.Millisecond))
		for err := range errs {
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(metrics.Inputs()).To(HaveLen(callers * 3))
	})

	It("bounds each query by the call timeout", func() {
		metrics.Delay = time.Second
		fast := monitor.NewService(providertest.NewFakeCompute(), metrics,
			monitor.WithCallTimeout(50*time.Millisecond))
		defer fast.Close()

		_, err := fast.Metrics(context.Background(), "i-123")
		Expect(err).To(MatchError(ContainSubstring("context deadline exceeded")))
		Expect(err).To(MatchError(HavePrefix("CloudWatch Metric Error: ")))
	})
})
