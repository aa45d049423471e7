// Package devserver is a local stand-in for the workflow generation service.
// It speaks the same wire contract so the TUI and CLI can be exercised without
// the real backend.
package devserver

import "github.com/zjrosen/flowdraft/internal/draft"

// ServiceName is reported by the health and root endpoints.
const ServiceName = "Temporal Code Generator API"

// Error codes carried in Envelope.ErrorCode.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeWorkflowFailed = "WORKFLOW_FAILED"
)

// Envelope is the generate response. Every key is always serialized; unset
// optional values are null.
type Envelope struct {
	Status              string         `json:"status"`
	Message             string         `json:"message"`
	Timestamp           string         `json:"timestamp"`
	Data                map[string]any `json:"data"`
	Error               *string        `json:"error"`
	ErrorCode           *string        `json:"error_code"`
	ErrorDetails        map[string]any `json:"error_details"`
	VerificationStatus  *string        `json:"verification_status"`
	VerificationSummary map[string]any `json:"verification_summary"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// IndexResponse is the body of GET /.
type IndexResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// APIError is returned for requests that cannot be decoded.
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// generateRequest accepts both request shapes; Prompt is non-nil only for the
// prompt flow.
type generateRequest struct {
	Prompt     *string          `json:"prompt"`
	Name       string           `json:"name"`
	Activities []draft.Activity `json:"activities"`
}

func strPtr(s string) *string { return &s }
