package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hwpx-agentic/gateway/internal/agent"
)

type fakeRunner struct {
	state agent.State
	err   error
}

func (f *fakeRunner) Run(ctx context.Context, message string) (agent.State, error) {
	return f.state, f.err
}

func TestHandleHealth(t *testing.T) {
	srv := NewServer(&fakeRunner{}, Defaults{Provider: "cerebras/fp16", Model: "openai/gpt-oss-120b", APIKeyEnv: "OPENROUTER_API_KEY"})

	req := httptest.NewRequest(http.MethodGet, "/agent/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Surface != "agent-http" {
		t.Fatalf("unexpected health body: %+v", body)
	}
	if body.Defaults.Provider != "cerebras/fp16" {
		t.Fatalf("unexpected default provider: %q", body.Defaults.Provider)
	}
}

func TestHandleChat_EmptyMessage(t *testing.T) {
	srv := NewServer(&fakeRunner{}, Defaults{})

	req := httptest.NewRequest(http.MethodPost, "/agent/chat", bytes.NewBufferString(`{"message":""}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Error != "message_required" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestHandleChat_InvalidJSON(t *testing.T) {
	srv := NewServer(&fakeRunner{}, Defaults{})

	req := httptest.NewRequest(http.MethodPost, "/agent/chat", bytes.NewBufferString(`not json`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleChat_NonObjectBody(t *testing.T) {
	srv := NewServer(&fakeRunner{}, Defaults{})

	req := httptest.NewRequest(http.MethodPost, "/agent/chat", bytes.NewBufferString(`["a","b"]`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleChat_Success(t *testing.T) {
	runner := &fakeRunner{state: agent.State{
		Case:             agent.CaseNoDocumentContext,
		Intent:           agent.IntentStatus,
		Subagent:         agent.SubagentStatus,
		SelectedToolName: "hwp_ping",
		Arguments:        map[string]any{},
		Reply:            "[hwp_ping] 실행 완료\nok",
		Result:           "ok",
	}}
	srv := NewServer(runner, Defaults{Provider: "cerebras/fp16", Model: "openai/gpt-oss-120b", APIKeyEnv: "OPENROUTER_API_KEY"})

	req := httptest.NewRequest(http.MethodPost, "/agent/chat", bytes.NewBufferString(`{"message":"status check"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.SelectedTool != "hwp_ping" {
		t.Fatalf("unexpected chat body: %+v", body)
	}
	if body.Runtime.Provider != "cerebras/fp16" {
		t.Fatalf("unexpected runtime provider: %+v", body.Runtime)
	}
}

func TestHandleChat_RuntimeOverride(t *testing.T) {
	runner := &fakeRunner{state: agent.State{SelectedToolName: "hwp_ping", Reply: "ok"}}
	srv := NewServer(runner, Defaults{Provider: "cerebras/fp16", Model: "openai/gpt-oss-120b", APIKeyEnv: "OPENROUTER_API_KEY"})

	req := httptest.NewRequest(http.MethodPost, "/agent/chat", bytes.NewBufferString(
		`{"message":"hi","runtime":{"provider":"custom","model":"custom-model","api_key":"secret"}}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var body chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Runtime.Provider != "custom" || body.Runtime.Model != "custom-model" || !body.Runtime.APIKeyPresent {
		t.Fatalf("unexpected runtime override result: %+v", body.Runtime)
	}
}
