// Package providertest provides in-memory provider clients for tests.
package providertest

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// FakeCompute implements provider.ComputeAPI with canned responses
type FakeCompute struct {
	mu sync.Mutex

	Instances    *ec2.DescribeInstancesOutput
	InstancesErr error

	Statuses    *ec2.DescribeInstanceStatusOutput
	StatusesErr error

	Console    *ec2.GetConsoleOutputOutput
	ConsoleErr error

	ControlErr error

	calls     map[string]int
	lastInput map[string]any
}

// NewFakeCompute creates a fake with empty describe responses
func NewFakeCompute() *FakeCompute {
	return &FakeCompute{
		Instances: &ec2.DescribeInstancesOutput{},
		Statuses:  &ec2.DescribeInstanceStatusOutput{},
		Console:   &ec2.GetConsoleOutputOutput{},
	}
}

func (f *FakeCompute) record(op string, input any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
		f.lastInput = make(map[string]any)
	}
	f.calls[op]++
	f.lastInput[op] = input
}

// Calls returns how many times op was invoked
func (f *FakeCompute) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls returns the number of calls across all operations
func (f *FakeCompute) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// LastInput returns the most recent input passed to op
func (f *FakeCompute) LastInput(op string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastInput[op]
}

func (f *FakeCompute) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.record("DescribeInstances", params)
	if f.InstancesErr != nil {
		return nil, f.InstancesErr
	}
	return f.Instances, nil
}

func (f *FakeCompute) DescribeInstanceStatus(ctx context.Context, params *ec2.DescribeInstanceStatusInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceStatusOutput, error) {
	f.record("DescribeInstanceStatus", params)
	if f.StatusesErr != nil {
		return nil, f.StatusesErr
	}
	return f.Statuses, nil
}

func (f *FakeCompute) GetConsoleOutput(ctx context.Context, params *ec2.GetConsoleOutputInput, optFns ...func(*ec2.Options)) (*ec2.GetConsoleOutputOutput, error) {
	f.record("GetConsoleOutput", params)
	if f.ConsoleErr != nil {
		return nil, f.ConsoleErr
	}
	return f.Console, nil
}

func (f *FakeCompute) StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error) {
	f.record("StartInstances", params)
	if f.ControlErr != nil {
		return nil, f.ControlErr
	}
	return &ec2.StartInstancesOutput{}, nil
}

func (f *FakeCompute) StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
	f.record("StopInstances", params)
	if f.ControlErr != nil {
		return nil, f.ControlErr
	}
	return &ec2.StopInstancesOutput{}, nil
}

// FakeMetrics implements provider.MetricsAPI keyed by metric name
type FakeMetrics struct {
	mu sync.Mutex

	Outputs map[string]*cloudwatch.GetMetricStatisticsOutput
	Errors  map[string]error
	// Delay is applied to every query before it answers
	Delay time.Duration

	inputs []*cloudwatch.GetMetricStatisticsInput
}

// NewFakeMetrics creates a fake returning no datapoints for every metric
func NewFakeMetrics() *FakeMetrics {
	return &FakeMetrics{
		Outputs: make(map[string]*cloudwatch.GetMetricStatisticsOutput),
		Errors:  make(map[string]error),
	}
}

func (f *FakeMetrics) GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error) {
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.inputs = append(f.inputs, params)
	name := aws.ToString(params.MetricName)
	if err := f.Errors[name]; err != nil {
		return nil, err
	}
	if out, ok := f.Outputs[name]; ok {
		return out, nil
	}
	return &cloudwatch.GetMetricStatisticsOutput{}, nil
}

// Inputs returns a copy of every query received so far
func (f *FakeMetrics) Inputs() []*cloudwatch.GetMetricStatisticsInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*cloudwatch.GetMetricStatisticsInput(nil), f.inputs...)
}
