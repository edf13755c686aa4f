// Package client talks to a running monitor server over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"servermonitor/api"
	"servermonitor/internal/logging"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// RemoteError is a failure reported by the server, either through the
// success flag or an error status.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client is a monitor API client. GET requests are retried on transient
// failures; control requests are sent once.
type Client struct {
	baseURL string
	reads   *retryablehttp.Client
	writes  *retryablehttp.Client
}

// New creates a client for the server at baseURL, e.g. http://localhost:8000
func New(baseURL string, retries int, timeout time.Duration) *Client {
	newHTTP := func(max int) *retryablehttp.Client {
		c := retryablehttp.NewClient()
		c.RetryMax = max
		c.RetryWaitMin = 200 * time.Millisecond
		c.RetryWaitMax = 2 * time.Second
		c.HTTPClient.Timeout = timeout
		c.Logger = zapLeveledLogger{logging.Logger()}
		c.CheckRetry = checkRetry
		c.ErrorHandler = retryablehttp.PassthroughErrorHandler
		return c
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		reads:   newHTTP(retries),
		writes:  newHTTP(0),
	}
}

// Status lists instances with their health
func (c *Client) Status(ctx context.Context) ([]api.InstanceRecord, error) {
	var resp api.StatusResponse
	if err := c.get(ctx, "/api/status", &resp); err != nil {
		return nil, err
	}
	return resp.Instances, nil
}

// Logs returns the console output of an instance
func (c *Client) Logs(ctx context.Context, instanceID string) (string, error) {
	var resp api.LogResponse
	if err := c.get(ctx, "/api/logs/"+url.PathEscape(instanceID), &resp); err != nil {
		return "", err
	}
	return resp.Log, nil
}

// Metrics returns the last hour of CPU and network metrics
func (c *Client) Metrics(ctx context.Context, instanceID string) (*api.MetricsResponse, error) {
	var resp api.MetricsResponse
	if err := c.get(ctx, "/api/metrics/"+url.PathEscape(instanceID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Control requests a start or stop of an instance
func (c *Client) Control(ctx context.Context, instanceID, action string) (*api.ControlResult, error) {
	path := fmt.Sprintf("/api/control/%s/%s", url.PathEscape(instanceID), url.PathEscape(action))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var result api.ControlResult
	if err := c.do(c.writes, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(c.reads, req, dest)
}

func (c *Client) do(hc *retryablehttp.Client, req *retryablehttp.Request, dest any) error {
	resp, err := hc.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e api.ErrorResponse
		if json.Unmarshal(body, &e) != nil || e.Detail == "" {
			e.Detail = strings.TrimSpace(string(body))
		}
		return &RemoteError{StatusCode: resp.StatusCode, Message: e.Detail}
	}

	// status and logs report provider failures inside a 200 body
	var failure api.FailureResponse
	if err := json.Unmarshal(body, &failure); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if !failure.Success {
		return &RemoteError{StatusCode: resp.StatusCode, Message: failure.ErrorMessage}
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// checkRetry does not retry 500s: the server uses them for provider
// failures that already went through the provider client.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp != nil && resp.StatusCode == http.StatusInternalServerError {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// zapLeveledLogger adapts zap to retryablehttp.LeveledLogger
type zapLeveledLogger struct {
	l *zap.Logger
}

func (z zapLeveledLogger) fields(keysAndValues []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, zap.Any(fmt.Sprint(keysAndValues[i]), keysAndValues[i+1]))
	}
	return fields
}

func (z zapLeveledLogger) Error(msg string, keysAndValues ...interface{}) {
	z.l.Error(msg, z.fields(keysAndValues)...)
}

func (z zapLeveledLogger) Info(msg string, keysAndValues ...interface{}) {
	z.l.Info(msg, z.fields(keysAndValues)...)
}

func (z zapLeveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	z.l.Debug(msg, z.fields(keysAndValues)...)
}

func (z zapLeveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	z.l.Warn(msg, z.fields(keysAndValues)...)
}
