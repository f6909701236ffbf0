package modelagent

import (
	"context"
	"encoding/json"
	"testing"

	gw "github.com/hwpx-agentic/gateway"
	"github.com/hwpx-agentic/gateway/internal/core"
)

type fakeClient struct {
	responses []RawResponse
	calls     int
}

func (f *fakeClient) Call(ctx context.Context, params CallParams) (RawResponse, error) {
	if f.calls >= len(f.responses) {
		return RawResponse{}, nil
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

type fakeGateway struct {
	records  []core.ToolRecord
	lastArgs map[string]any
}

func (g *fakeGateway) Registry() []core.ToolRecord { return g.records }

func (g *fakeGateway) ToolCall(ctx context.Context, toolID string, arguments map[string]any) (gw.CallResponse, error) {
	g.lastArgs = arguments
	return gw.CallResponse{Success: true, ToolID: toolID, Result: map[string]any{"ok": true}}, nil
}

func TestRunner_TerminalMessageFirstRound(t *testing.T) {
	client := &fakeClient{responses: []RawResponse{{Content: "all done"}}}
	gateway := &fakeGateway{records: []core.ToolRecord{{ToolID: "hwp_ping:abc", Name: "hwp_ping"}}}
	r := New(client, gateway)

	result, err := r.Run(context.Background(), "openrouter/auto", "system", "status check")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reply != "all done" {
		t.Fatalf("expected reply 'all done', got %q", result.Reply)
	}
	if result.Rounds != 1 {
		t.Fatalf("expected 1 round, got %d", result.Rounds)
	}
}

func TestRunner_OneToolCallThenTerminal(t *testing.T) {
	args, _ := json.Marshal(map[string]any{})
	client := &fakeClient{responses: []RawResponse{
		{ToolCalls: []ToolCall{{CallID: "c1", Name: "hwp_ping", Args: args}}},
		{Content: "pong reported"},
	}}
	gateway := &fakeGateway{records: []core.ToolRecord{{ToolID: "hwp_ping:abc", Name: "hwp_ping"}}}
	r := New(client, gateway)

	result, err := r.Run(context.Background(), "openrouter/auto", "system", "status check")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reply != "pong reported" {
		t.Fatalf("expected final reply, got %q", result.Reply)
	}
	if len(result.ToolCalls) != 1 || result.ToolCalls[0] != "hwp_ping" {
		t.Fatalf("expected one recorded tool call, got %v", result.ToolCalls)
	}
}

func TestRunner_MaxRoundsExceeded(t *testing.T) {
	args, _ := json.Marshal(map[string]any{})
	resp := RawResponse{ToolCalls: []ToolCall{{CallID: "c1", Name: "hwp_ping", Args: args}}}
	responses := make([]RawResponse, 0, maxRounds)
	for i := 0; i < maxRounds; i++ {
		responses = append(responses, resp)
	}
	client := &fakeClient{responses: responses}
	gateway := &fakeGateway{records: []core.ToolRecord{{ToolID: "hwp_ping:abc", Name: "hwp_ping"}}}
	r := New(client, gateway)

	_, err := r.Run(context.Background(), "openrouter/auto", "system", "status check")
	if err == nil {
		t.Fatal("expected max-rounds error")
	}
}

func TestRunner_UnknownToolInCall(t *testing.T) {
	args, _ := json.Marshal(map[string]any{})
	client := &fakeClient{responses: []RawResponse{
		{ToolCalls: []ToolCall{{CallID: "c1", Name: "hwp_not_in_registry", Args: args}}},
		{Content: "handled"},
	}}
	gateway := &fakeGateway{records: []core.ToolRecord{{ToolID: "hwp_ping:abc", Name: "hwp_ping"}}}
	r := New(client, gateway)

	result, err := r.Run(context.Background(), "openrouter/auto", "system", "status check")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reply != "handled" {
		t.Fatalf("expected loop to continue past unknown tool, got %q", result.Reply)
	}
}

func TestExecuteCall_RepairsFencedArguments(t *testing.T) {
	fenced := []byte("```json\n{\"text\": \"hello\"}\n```")
	gateway := &fakeGateway{records: []core.ToolRecord{{ToolID: "hwp_insert_text:abc", Name: "hwp_insert_text"}}}
	r := New(&fakeClient{}, gateway)

	byName := map[string]core.ToolRecord{"hwp_insert_text": {ToolID: "hwp_insert_text:abc", Name: "hwp_insert_text"}}
	result := r.executeCall(context.Background(), byName, ToolCall{CallID: "c1", Name: "hwp_insert_text", Args: fenced})

	if errVal, ok := result.Result.(map[string]any)["error"]; ok {
		t.Fatalf("expected arguments to be repaired, got error: %v", errVal)
	}
	if gateway.lastArgs["text"] != "hello" {
		t.Fatalf("expected repaired args to reach the gateway, got %+v", gateway.lastArgs)
	}
}

func TestExecuteCall_UnrepairableArguments(t *testing.T) {
	gateway := &fakeGateway{records: []core.ToolRecord{{ToolID: "hwp_insert_text:abc", Name: "hwp_insert_text"}}}
	r := New(&fakeClient{}, gateway)

	byName := map[string]core.ToolRecord{"hwp_insert_text": {ToolID: "hwp_insert_text:abc", Name: "hwp_insert_text"}}
	result := r.executeCall(context.Background(), byName, ToolCall{CallID: "c1", Name: "hwp_insert_text", Args: []byte("not json at all")})

	errMap, ok := result.Result.(map[string]any)
	if !ok {
		t.Fatalf("expected error result, got %+v", result.Result)
	}
	if _, ok := errMap["error"]; !ok {
		t.Fatalf("expected an error field, got %+v", errMap)
	}
}
