package client_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"servermonitor/internal/client"
	"servermonitor/internal/config"
	"servermonitor/internal/monitor"
	"servermonitor/internal/provider/providertest"
	"servermonitor/internal/server"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Client against a monitor server", func() {
	var (
		compute *providertest.FakeCompute
		metrics *providertest.FakeMetrics
		svc     *monitor.Service
		ts      *httptest.Server
		c       *client.Client
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		compute = providertest.NewFakeCompute()
		metrics = providertest.NewFakeMetrics()
		svc = monitor.NewService(compute, metrics)
		ts = httptest.NewServer(server.NewServer(config.Default().Server, svc).Handler())
		c = client.New(ts.URL, 2, 5*time.Second)
	})

	AfterEach(func() {
		ts.Close()
		svc.Close()
	})

	It("lists instances", func() {
		compute.Statuses = &ec2.DescribeInstanceStatusOutput{
			InstanceStatuses: []types.InstanceStatus{{
				InstanceId:    aws.String("i-1"),
				InstanceState: &types.InstanceState{Name: types.InstanceStateNamePending},
			}},
		}

		instances, err := c.Status(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(instances).To(HaveLen(1))
		Expect(instances[0].InstanceID).To(Equal("i-1"))
		Expect(instances[0].InstanceState).To(Equal("pending"))
	})

	It("surfaces soft failures as errors", func() {
		compute.StatusesErr = errors.New("expired token")

		_, err := c.Status(ctx)
		var re *client.RemoteError
		Expect(errors.As(err, &re)).To(BeTrue())
		Expect(re.StatusCode).To(Equal(http.StatusOK))
		Expect(re.Message).To(Equal("AWS API Call Error: expired token"))
	})

	It("fetches console logs", func() {
		compute.Console = &ec2.GetConsoleOutputOutput{
			Output: aws.String(base64.StdEncoding.EncodeToString([]byte("ready"))),
		}

		log, err := c.Logs(ctx, "i-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(log).To(Equal("ready"))
	})

	It("fetches metrics", func() {
		resp, err := c.Metrics(ctx, "i-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.InstanceID).To(Equal("i-1"))
		Expect(resp.CPUUtilization).To(BeEmpty())
	})

	It("reports hard failures with the server detail and does not retry them", func() {
		metrics.Errors["CPUUtilization"] = errors.New("AccessDenied")

		_, err := c.Metrics(ctx, "i-1")
		var re *client.RemoteError
		Expect(errors.As(err, &re)).To(BeTrue())
		Expect(re.StatusCode).To(Equal(http.StatusInternalServerError))
		Expect(re.Message).To(Equal("CloudWatch Metric Error: AccessDenied"))
		Expect(len(metrics.Inputs())).To(BeNumerically("<=", 3))
	})

	It("sends control requests once", func() {
		result, err := c.Control(ctx, "i-1", "stop")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Action).To(Equal("stop"))
		Expect(compute.Calls("StopInstances")).To(Equal(1))
	})

	It("reports invalid actions", func() {
		_, err := c.Control(ctx, "i-1", "reboot")
		var re *client.RemoteError
		Expect(errors.As(err, &re)).To(BeTrue())
		Expect(re.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(re.Message).To(Equal("Invalid action. Use 'start' or 'stop'."))
	})
})

var _ = Describe("Client retries", func() {
	It("retries reads on transient errors", func() {
		var hits atomic.Int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true,"instances":[]}`))
		}))
		defer ts.Close()

		instances, err := client.New(ts.URL, 2, time.Second).Status(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(instances).To(BeEmpty())
		Expect(hits.Load()).To(Equal(int32(2)))
	})

	It("does not retry control requests", func() {
		var hits atomic.Int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer ts.Close()

		_, err := client.New(ts.URL, 2, time.Second).Control(context.Background(), "i-1", "start")
		Expect(err).To(HaveOccurred())
		Expect(hits.Load()).To(Equal(int32(1)))
	})
})
