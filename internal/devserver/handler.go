package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zjrosen/flowdraft/internal/backend"
	"github.com/zjrosen/flowdraft/internal/draft"
	"github.com/zjrosen/flowdraft/internal/log"
)

// maxBodySize is the largest request body accepted (1MB).
const maxBodySize = 1 << 20

// Handler serves the workflow generation API.
type Handler struct {
	latency time.Duration
	now     func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithLatency delays every generate response, which makes the busy state of
// clients observable.
func WithLatency(d time.Duration) Option {
	return func(h *Handler) {
		h.latency = d
	}
}

// NewHandler creates a Handler.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers the API routes on the provided mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST "+backend.GeneratePath, h.Generate)
	mux.HandleFunc("GET "+backend.HealthPath, h.Health)
	mux.HandleFunc("GET /{$}", h.Index)
}

// Routes returns a mux with every route registered and CORS enabled.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return allowCORS(mux)
}

// Health returns the service health.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Service: ServiceName})
}

// Index lists the available endpoints.
// GET /
func (h *Handler) Index(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, IndexResponse{
		Message: ServiceName,
		Endpoints: map[string]string{
			"health":   backend.HealthPath,
			"generate": backend.GeneratePath,
		},
	})
}

// Generate handles both request shapes: {"prompt": ...} and a serialized
// workflow draft. Domain failures are reported in the envelope with status 200.
// POST /api/generate-workflow
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}

	if h.latency > 0 {
		select {
		case <-time.After(h.latency):
		case <-r.Context().Done():
			return
		}
	}

	var env Envelope
	if req.Prompt != nil {
		env = h.fromPrompt(*req.Prompt)
	} else {
		env = h.fromWorkflow(draft.Workflow{Name: req.Name, Activities: req.Activities})
	}
	log.Info(log.CatHTTP, "Generate request handled", "status", env.Status, "prompt", req.Prompt != nil)
	h.writeJSON(w, http.StatusOK, env)
}

func (h *Handler) fromPrompt(prompt string) Envelope {
	if strings.TrimSpace(prompt) == "" {
		return h.failed("Prompt cannot be empty", CodeValidation,
			map[string]any{"prompt": prompt, "generated_files": []string{}, "instruction": nil},
			map[string]any{"field": "prompt", "reason": "empty_or_null"})
	}

	wf, err := parsePrompt(prompt)
	if err != nil {
		return h.failed("❌ Workflow execution failed: "+err.Error(), CodeWorkflowFailed,
			map[string]any{"prompt": prompt, "generated_files": []string{}, "instruction": nil},
			map[string]any{"reason": err.Error()})
	}

	env := h.generated(wf)
	env.Data["prompt"] = prompt
	return env
}

func (h *Handler) fromWorkflow(wf draft.Workflow) Envelope {
	if err := wf.Validate(); err != nil {
		return h.failed("Workflow is incomplete: "+err.Error(), CodeValidation,
			map[string]any{"name": wf.Name, "generated_files": []string{}},
			map[string]any{"reason": err.Error()})
	}
	return h.generated(wf)
}

func (h *Handler) generated(wf draft.Workflow) Envelope {
	files, err := renderFiles(wf)
	if err != nil {
		log.ErrorErr(log.CatHTTP, "Rendering workflow files failed", err, "workflow", wf.Name)
		return h.failed("❌ Workflow execution failed: Unknown error", CodeWorkflowFailed,
			map[string]any{"name": wf.Name, "generated_files": []string{}},
			map[string]any{"reason": err.Error()})
	}
	return Envelope{
		Status:    backend.StatusSuccess,
		Message:   fmt.Sprintf("✅ Workflow %s generated with %d activities", wf.Name, len(wf.Activities)),
		Timestamp: h.timestamp(),
		Data: map[string]any{
			"name":            wf.Name,
			"activities":      wf.Activities,
			"generated_files": files,
			"instruction":     "Run the worker, then start " + className(wf.Name) + "Workflow",
		},
		VerificationStatus: strPtr("PASSED"),
	}
}

func (h *Handler) failed(msg, code string, data, details map[string]any) Envelope {
	return Envelope{
		Status:       backend.StatusFailed,
		Message:      msg,
		Timestamp:    h.timestamp(),
		Data:         data,
		Error:        strPtr(msg),
		ErrorCode:    strPtr(code),
		ErrorDetails: details,
	}
}

func (h *Handler) timestamp() string {
	return h.now().UTC().Format("2006-01-02T15:04:05.000000")
}

// writeJSON writes a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error(log.CatHTTP, "Failed to encode JSON response", "error", err)
	}
}

// writeError writes an error response in the standard APIError format.
func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	h.writeJSON(w, status, APIError{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
