// Package api holds the JSON shapes exchanged between the monitor server and
// its clients.
package api

// Sentinels used when the provider omits data
const (
	NoNameTag    = "No Name Tag"
	NotAvailable = "N/A"
	NoConsoleLog = "Log data not found or instance not running."
)

// LastUpdatedLayout is the layout of InstanceRecord.LastUpdated
const LastUpdatedLayout = "2006-01-02 15:04:05 UTC"

// InstanceRecord is one instance joined with its health checks
type InstanceRecord struct {
	InstanceID     string  `json:"InstanceId"`
	Name           string  `json:"Name"`
	PublicIP       *string `json:"PublicIp"`
	PrivateIP      *string `json:"PrivateIp"`
	InstanceType   *string `json:"InstanceType"`
	InstanceState  string  `json:"InstanceState"`
	SystemStatus   string  `json:"SystemStatus"`
	InstanceStatus string  `json:"InstanceStatus"`
	LastUpdated    string  `json:"LastUpdated"`
}

// MetricPoint is a single formatted datapoint
type MetricPoint struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
}

// ControlResult is returned after a lifecycle command was accepted
type ControlResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// StatusResponse is the body of GET /api/status
type StatusResponse struct {
	Success   bool             `json:"success"`
	Instances []InstanceRecord `json:"instances"`
}

// LogResponse is the body of GET /api/logs/{instance_id}
type LogResponse struct {
	Success    bool   `json:"success"`
	InstanceID string `json:"instance_id"`
	Log        string `json:"log"`
}

// MetricsResponse is the body of GET /api/metrics/{instance_id}
type MetricsResponse struct {
	Success        bool          `json:"success"`
	InstanceID     string        `json:"instance_id"`
	CPUUtilization []MetricPoint `json:"cpu_utilization"`
	NetworkIn      []MetricPoint `json:"network_in"`
	NetworkOut     []MetricPoint `json:"network_out"`
}

// FailureResponse is the soft-fail body of the status and logs endpoints
type FailureResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message"`
}

// ErrorResponse is the body of any non-2xx response
type ErrorResponse struct {
	Detail string `json:"detail"`
}
