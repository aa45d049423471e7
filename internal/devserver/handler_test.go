package devserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/flowdraft/internal/backend"
	"github.com/zjrosen/flowdraft/internal/draft"
)

func newTestHandler() *Handler {
	h := NewHandler()
	h.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return h
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, backend.GeneratePath, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp map[string]any
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// === Health / Index ===

func TestHandler_Health(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, backend.HealthPath, nil)
	w := httptest.NewRecorder()

	newTestHandler().Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, ServiceName, resp.Service)
}

func TestHandler_Index(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	newTestHandler().Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp IndexResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, backend.GeneratePath, resp.Endpoints["generate"])
}

func TestHandler_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, backend.GeneratePath, nil)
	w := httptest.NewRecorder()

	newTestHandler().Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// === Generate ===

func TestGenerate_InvalidJSON(t *testing.T) {
	w, _ := post(t, newTestHandler().Routes(), `{not json`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_json", resp.Code)
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	for _, prompt := range []string{`""`, `"   "`} {
		w, resp := post(t, newTestHandler().Routes(), `{"prompt":`+prompt+`}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, backend.StatusFailed, resp["status"])
		assert.Equal(t, "Prompt cannot be empty", resp["message"])
		assert.Equal(t, CodeValidation, resp["error_code"])
		assert.Equal(t, map[string]any{"field": "prompt", "reason": "empty_or_null"}, resp["error_details"])
	}
}

func TestGenerate_PromptParsed(t *testing.T) {
	body := `{"prompt":"create a workflow named as payment and has 2 activity that are named as activity1 and activity2 with retry duration of 15 sec"}`
	w, resp := post(t, newTestHandler().Routes(), body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, backend.StatusSuccess, resp["status"])
	assert.Equal(t, "PASSED", resp["verification_status"])
	assert.Nil(t, resp["error"])
	assert.Equal(t, "2026-01-02T03:04:05.000000", resp["timestamp"])

	data := resp["data"].(map[string]any)
	assert.Equal(t, "payment", data["name"])
	activities := data["activities"].([]any)
	require.Len(t, activities, 2)
	assert.Equal(t, "activity2", activities[1].(map[string]any)["name"])
	assert.Equal(t, float64(15), activities[1].(map[string]any)["timeout_seconds"])

	files := data["generated_files"].(map[string]any)
	assert.Contains(t, files["workflow.py"], "class PaymentWorkflow:")
	assert.Contains(t, files["workflow.py"], "timedelta(seconds=15)")
	assert.Contains(t, files["activities.py"], "async def activity1_activity(")
}

func TestGenerate_PromptNotUnderstood(t *testing.T) {
	w, resp := post(t, newTestHandler().Routes(), `{"prompt":"hello there"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, backend.StatusFailed, resp["status"])
	assert.Equal(t, CodeWorkflowFailed, resp["error_code"])
	assert.Contains(t, resp["message"], "workflow name")
}

func TestGenerate_Workflow(t *testing.T) {
	body := `{"name":"OrderProcessor","activities":[{"id":"a1","name":"chargeCard","timeout_seconds":10},{"id":"a2","name":"sendEmail","timeout_seconds":10}]}`
	w, resp := post(t, newTestHandler().Routes(), body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, backend.StatusSuccess, resp["status"])
	assert.Equal(t, "✅ Workflow OrderProcessor generated with 2 activities", resp["message"])
	files := resp["data"].(map[string]any)["generated_files"].(map[string]any)
	assert.Contains(t, files["workflow.py"], "activities.charge_card_activity")
	assert.Contains(t, files["workflow.py"], "activities.send_email_activity")
}

func TestGenerate_IncompleteWorkflow(t *testing.T) {
	w, resp := post(t, newTestHandler().Routes(), `{"name":"x","activities":[]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, backend.StatusFailed, resp["status"])
	assert.Equal(t, CodeValidation, resp["error_code"])
}

func TestGenerate_EnvelopeKeysAlwaysPresent(t *testing.T) {
	_, resp := post(t, newTestHandler().Routes(), `{"name":"x","activities":[{"id":"a","name":"b","timeout_seconds":10}]}`)

	for _, key := range []string{"status", "message", "timestamp", "data", "error", "error_code", "error_details", "verification_status", "verification_summary"} {
		assert.Contains(t, resp, key)
	}
}

// === Helpers ===

func TestParsePrompt(t *testing.T) {
	tests := []struct {
		prompt  string
		name    string
		acts    []string
		timeout int
		wantErr error
	}{
		{"create a workflow named payment with activities named charge, refund and notify", "payment", []string{"charge", "refund", "notify"}, draft.DefaultTimeoutSeconds, nil},
		{"Workflow called Billing with activity called invoice with timeout 30 seconds", "Billing", []string{"invoice"}, 30, nil},
		{"make me something", "", nil, 0, errNoWorkflowName},
		{"workflow named lonely", "", nil, 0, errNoActivities},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			wf, err := parsePrompt(tt.prompt)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, wf.Name)
			var names []string
			for _, a := range wf.Activities {
				names = append(names, a.Name)
				assert.Equal(t, tt.timeout, a.TimeoutSeconds)
			}
			assert.Equal(t, tt.acts, names)
		})
	}
}

func TestSnakeAndClassCase(t *testing.T) {
	assert.Equal(t, "charge_card", snakeCase("chargeCard"))
	assert.Equal(t, "send_email", snakeCase("send email"))
	assert.Equal(t, "_1st_step", snakeCase("1st step"))
	assert.Equal(t, "unnamed", snakeCase("!!!"))
	assert.Equal(t, "OrderProcessor", className("order processor"))
	assert.Equal(t, "OrderProcessor", className("order_processor"))
	assert.Equal(t, "Generated", className(""))
}

// === Server ===

func TestServer_ServesClientAndShutsDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(ln.Addr().String(), NewHandler(), noop.NewTracerProvider())
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, ln) }()

	client := backend.NewClient("http://" + ln.Addr().String())
	resp, err := client.SubmitWorkflow(context.Background(), draft.Workflow{
		Name:       "OrderProcessor",
		Activities: []draft.Activity{{ID: "a1", Name: "chargeCard", TimeoutSeconds: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, backend.StatusSuccess, resp.Status)

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)

	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
