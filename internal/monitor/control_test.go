package monitor_test

import (
	"context"
	"errors"

	"servermonitor/internal/monitor"
	"servermonitor/internal/provider/providertest"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/smithy-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Control", func() {
	var (
		compute *providertest.FakeCompute
		svc     *monitor.Service
	)

	BeforeEach(func() {
		compute = providertest.NewFakeCompute()
		svc = monitor.NewService(compute, providertest.NewFakeMetrics())
	})

	AfterEach(func() {
		svc.Close()
	})

	DescribeTable("issues the matching lifecycle command",
		func(action, op string) {
			result, err := svc.Control(context.Background(), "i-123", action)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Success).To(BeTrue())
			Expect(result.Action).To(Equal(action))
			Expect(result.Message).To(Equal("EC2 Instance i-123 " + action + " request sent."))
			Expect(compute.Calls(op)).To(Equal(1))
			Expect(compute.TotalCalls()).To(Equal(1))
		},
		Entry("start", "start", "StartInstances"),
		Entry("stop", "stop", "StopInstances"),
	)

	It("passes the instance id through verbatim", func() {
		_, err := svc.Control(context.Background(), "i-0123456789abcdef0", "stop")
		Expect(err).NotTo(HaveOccurred())

		input := compute.LastInput("StopInstances").(*ec2.StopInstancesInput)
		Expect(input.InstanceIds).To(Equal([]string{"i-0123456789abcdef0"}))
	})

	It("rejects unknown actions without calling the provider", func() {
		_, err := svc.Control(context.Background(), "i-123", "restart")

		var ve *monitor.ValidationError
		Expect(errors.As(err, &ve)).To(BeTrue())
		Expect(ve.Value).To(Equal("restart"))
		Expect(err).To(MatchError("Invalid action. Use 'start' or 'stop'."))
		Expect(compute.TotalCalls()).To(Equal(0))
	})

	It("labels provider failures with a permissions hint", func() {
		compute.ControlErr = &smithy.GenericAPIError{Code: "UnauthorizedOperation", Message: "You are not authorized to perform this operation."}

		_, err := svc.Control(context.Background(), "i-123", "start")

		var pe *monitor.ProviderError
		Expect(errors.As(err, &pe)).To(BeTrue())
		Expect(pe.Op).To(Equal("StartInstances"))
		Expect(err.Error()).To(HavePrefix("Instance Control Error (Check Permissions): "))
	})
})

var _ = Describe("ParseAction", func() {
	It("accepts only start and stop", func() {
		Expect(monitor.ParseAction("start")).To(Equal(monitor.ActionStart))
		Expect(monitor.ParseAction("stop")).To(Equal(monitor.ActionStop))

		_, err := monitor.ParseAction("START")
		Expect(err).To(HaveOccurred())
		_, err = monitor.ParseAction("")
		Expect(err).To(HaveOccurred())
	})
})
