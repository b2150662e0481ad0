package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/informed/internal/knowledge"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	t.Setenv("API_KEY", "")
	t.Setenv("RATE_LIMIT_BURST", "1000")
	t.Setenv("CONFIDENCE_THRESHOLD", "")
	return NewApp(knowledge.Reference(), nil, zap.NewNop())
}

func do(t *testing.T, app *App, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func uniform() []float64 {
	return []float64{0.125, 0.125, 0.125, 0.125, 0.125, 0.125, 0.125, 0.125}
}

func TestOperationalEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := do(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, app, http.MethodGet, "/version", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev", decode(t, rec)["version"])

	rec = do(t, app, http.MethodGet, "/stats", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3.0, decode(t, rec)["request_count"])
}

func TestRequestIDIsPropagated(t *testing.T) {
	app := newTestApp(t)
	rec := do(t, app, http.MethodGet, "/health", nil, "X-Request-ID", "req-123")
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestKnowledgeEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := do(t, app, http.MethodGet, "/v1/knowledge/diagnoses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	diagnoses := decode(t, rec)["diagnoses"].([]any)
	assert.Len(t, diagnoses, 8)
	assert.Equal(t, "migraine", diagnoses[0].(map[string]any)["id"])

	rec = do(t, app, http.MethodGet, "/v1/knowledge/symptoms", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["symptoms"], 36)

	rec = do(t, app, http.MethodGet, "/v1/knowledge/cpt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cpt := decode(t, rec)
	assert.Len(t, cpt["table"], 8)
	assert.Len(t, cpt["table"].([]any)[0], 36)
}

func TestInferenceEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := do(t, app, http.MethodPost, "/v1/inference/entropy", map[string]any{"distribution": uniform()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 3.0, decode(t, rec)["entropy"], 1e-9)

	rec = do(t, app, http.MethodPost, "/v1/inference/update", map[string]any{
		"distribution": uniform(), "symptom_id": "S28", "answer": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode(t, rec)
	assert.Len(t, updated["distribution"], 8)
	assert.Less(t, updated["entropy"].(float64), 3.0)

	rec = do(t, app, http.MethodPost, "/v1/inference/information-gain", map[string]any{
		"distribution": uniform(), "symptom_id": "S28",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 0.40656, decode(t, rec)["gain"], 1e-4)

	rec = do(t, app, http.MethodPost, "/v1/inference/next-question", map[string]any{
		"distribution": uniform(), "asked": []string{"S28"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	next := decode(t, rec)
	assert.Equal(t, false, next["exhausted"])
	assert.Equal(t, "S11", next["question"].(map[string]any)["symptom"].(map[string]any)["id"])
}

func TestNextQuestionExhausted(t *testing.T) {
	app := newTestApp(t)

	asked := make([]string, 0, 36)
	for _, s := range knowledge.Reference().Symptoms() {
		asked = append(asked, s.ID)
	}
	rec := do(t, app, http.MethodPost, "/v1/inference/next-question", map[string]any{
		"distribution": uniform(), "asked": asked,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Nil(t, body["question"])
	assert.Equal(t, true, body["exhausted"])
}

func TestInferenceRejectsBadInput(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		path string
		body any
	}{
		{"unnormalised", "/v1/inference/entropy", map[string]any{"distribution": []float64{0.5, 0.6}}},
		{"wrong length", "/v1/inference/update", map[string]any{"distribution": []float64{0.5, 0.5}, "symptom_id": "S1", "answer": true}},
		{"unknown symptom", "/v1/inference/information-gain", map[string]any{"distribution": uniform(), "symptom_id": "S99"}},
		{"missing answer", "/v1/inference/update", map[string]any{"distribution": uniform(), "symptom_id": "S1"}},
		{"unknown asked", "/v1/inference/next-question", map[string]any{"distribution": uniform(), "asked": []string{"nope"}}},
		{"not json", "/v1/inference/entropy", "not an object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, app, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestMutualInformationEndpoint(t *testing.T) {
	app := newTestApp(t)

	rec := do(t, app, http.MethodGet, "/v1/analysis/mutual-information", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ranked := decode(t, rec)["symptoms"].([]any)
	require.Len(t, ranked, 36)
	assert.Equal(t, "S28", ranked[0].(map[string]any)["symptom"].(map[string]any)["id"])
}

func TestSessionFlow(t *testing.T) {
	app := newTestApp(t)

	rec := do(t, app, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	started := decode(t, rec)
	id := started["id"].(string)
	assert.Equal(t, 0.0, started["status"].(map[string]any)["turn"])
	assert.Len(t, started["posterior"], 8)

	base := "/v1/sessions/" + id

	rec = do(t, app, http.MethodGet, base+"/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "S28", decode(t, rec)["question"].(map[string]any)["symptom"].(map[string]any)["id"])

	rec = do(t, app, http.MethodPost, base+"/answers", map[string]any{"symptom_id": "S28", "answer": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, app, http.MethodPost, base+"/answers", map[string]any{"symptom_id": "S26", "answer": true})
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode(t, rec)["status"].(map[string]any)
	assert.Equal(t, true, status["complete"])
	assert.Equal(t, "confident", status["reason"])
	assert.Equal(t, "trigeminal-neuralgia", status["leading"].(map[string]any)["id"])

	rec = do(t, app, http.MethodPost, base+"/answers", map[string]any{"symptom_id": "S26", "answer": false})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, app, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["answers"], 2)

	rec = do(t, app, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, decode(t, rec)["status"].(map[string]any)["turn"])

	rec = do(t, app, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, app, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionErrors(t *testing.T) {
	app := newTestApp(t)

	rec := do(t, app, http.MethodGet, "/v1/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, app, http.MethodGet, "/v1/sessions/7f9c0c36-3a57-4e0b-9d4c-1f0a1b2c3d4e/next", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, app, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/v1/sessions/" + decode(t, rec)["id"].(string)

	rec = do(t, app, http.MethodPost, base+"/answers", map[string]any{"symptom_id": "S1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, app, http.MethodPost, base+"/answers", map[string]any{"symptom_id": "S404", "answer": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIKeyAuth(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "1000")
	t.Setenv("API_KEY", "s3cret")
	app := NewApp(knowledge.Reference(), nil, zap.NewNop())

	rec := do(t, app, http.MethodGet, "/v1/knowledge/diagnoses", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, app, http.MethodGet, "/v1/knowledge/diagnoses", nil, "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, app, http.MethodGet, "/v1/knowledge/diagnoses", nil, "Authorization", "Basic s3cret")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, app, http.MethodGet, "/v1/knowledge/diagnoses", nil, "Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Operational endpoints stay open.
	rec = do(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPrometheusEndpoint(t *testing.T) {
	app := newTestApp(t)

	rec := do(t, app, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, app, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "informed_sessions_started_total 1")
	assert.Regexp(t, `informed_http_requests_total\{method="POST",route="/v1/sessions/?",status="201"\} 1`, body)
}

func TestRateLimit(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("RATE_LIMIT_RPS", "0.001")
	t.Setenv("RATE_LIMIT_BURST", "2")
	app := NewApp(knowledge.Reference(), nil, zap.NewNop())

	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/health", nil).Code)
	rec := do(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}
