package monitor

import (
	"fmt"

	"servermonitor/internal/logging"

	"go.uber.org/zap"
)

// Labels prefixed to provider errors, one per endpoint
const (
	LabelInventory = "AWS API Call Error"
	LabelLogs      = "Log Retrieval Error"
	LabelMetrics   = "CloudWatch Metric Error"
	LabelControl   = "Instance Control Error (Check Permissions)"
)

// ProviderError wraps any failure returned by a provider client
type ProviderError struct {
	Op    string
	Label string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Label, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ValidationError reports a request rejected before any provider call
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func providerError(op, label, instanceID string, err error) *ProviderError {
	pe := &ProviderError{Op: op, Label: label, Err: err}
	logging.Logger().Error("provider call failed",
		zap.String("operation", op),
		zap.String("instance_id", instanceID),
		zap.String("error", logging.Truncate(pe.Error())))
	return pe
}
