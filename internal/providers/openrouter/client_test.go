package openrouter

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/hwpx-agentic/gateway/internal/config"
	"github.com/hwpx-agentic/gateway/internal/modelagent"
)

func TestNewClient(t *testing.T) {
	c := New(config.AgentConfig{APIKey: "test", Model: "openrouter/auto"}, &http.Client{}, nil)
	if c == nil {
		t.Fatal("expected client")
	}
}

func TestMapMessages_ToolResults(t *testing.T) {
	msgs := []modelagent.Message{{
		Role: "assistant",
		ToolResults: []modelagent.ToolResult{{
			CallID: "abc123",
			Name:   "tool_search",
			Result: map[string]any{"count": 3},
		}},
	}}
	mapped := mapMessages(msgs)
	if len(mapped) != 1 {
		t.Fatalf("expected 1 mapped message, got %d", len(mapped))
	}
	m := mapped[0]
	if m["role"] != "tool" {
		t.Fatalf("expected role tool, got %v", m["role"])
	}
	if m["tool_call_id"] != "abc123" {
		t.Fatalf("expected tool_call_id abc123, got %v", m["tool_call_id"])
	}
	content, ok := m["content"].(string)
	if !ok || content == "" {
		t.Fatalf("expected non-empty string content, got %v", m["content"])
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		t.Fatalf("content should be valid JSON, got: %s, error: %v", content, err)
	}
	if decoded["count"].(float64) != 3 {
		t.Fatalf("expected count 3, got %v", decoded["count"])
	}
}

func TestMapMessages_UnmarshalableToolResult(t *testing.T) {
	ch := make(chan int)
	msgs := []modelagent.Message{{
		Role: "assistant",
		ToolResults: []modelagent.ToolResult{{
			CallID: "test123",
			Name:   "broken_tool",
			Result: ch,
		}},
	}}
	mapped := mapMessages(msgs)
	content, ok := mapped[0]["content"].(string)
	if !ok || content == "" {
		t.Fatalf("expected non-empty string content, got %v", mapped[0]["content"])
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		t.Fatalf("error content should be valid JSON, got: %s, error: %v", content, err)
	}
	if decoded["error"] == "" || decoded["error"] == nil {
		t.Fatal("expected non-empty error message")
	}
}

func TestCoerceParams_MissingType(t *testing.T) {
	out := coerceParams(`{"properties":{"q":{"type":"string"}}}`)
	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", out)
	}
	if m["type"] != "object" {
		t.Fatalf("expected type object, got %v", m["type"])
	}
}

func TestCoerceParams_InvalidJSON(t *testing.T) {
	out := coerceParams("not json")
	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", out)
	}
	if m["type"] != "object" {
		t.Fatalf("expected type object fallback, got %v", m["type"])
	}
}
