// Package backend is the HTTP client for the workflow generation service.
//
// Both request shapes, a natural-language prompt and a fully assembled
// workflow, are POSTed to the same path; the service tells them apart by
// payload shape.
package backend

// Paths served by the workflow generation service.
const (
	GeneratePath = "/api/generate-workflow"
	HealthPath   = "/api/health"
)

// Response status values reported in GenerateResponse.Status.
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusFailed  = "failed"
)

// PromptRequest is the body of a prompt submission.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateResponse is the envelope returned by the generate endpoint. The
// service sends every key; null values decode to the zero value.
type GenerateResponse struct {
	Status              string         `json:"status"`
	Message             string         `json:"message"`
	Timestamp           string         `json:"timestamp"`
	Data                map[string]any `json:"data"`
	Error               string         `json:"error,omitempty"`
	ErrorCode           string         `json:"error_code,omitempty"`
	ErrorDetails        map[string]any `json:"error_details,omitempty"`
	VerificationStatus  string         `json:"verification_status,omitempty"`
	VerificationSummary map[string]any `json:"verification_summary,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Error   string `json:"error,omitempty"`
}
