package agent

import (
	"context"
	"testing"

	gw "github.com/hwpx-agentic/gateway"
	"github.com/hwpx-agentic/gateway/internal/core"
)

type fakeCaller struct {
	records []core.ToolRecord
	calls   []string
	onCall  func(toolID string, args map[string]any) (gw.CallResponse, error)
}

func (f *fakeCaller) Registry() []core.ToolRecord { return f.records }

func (f *fakeCaller) ToolCall(ctx context.Context, toolID string, arguments map[string]any) (gw.CallResponse, error) {
	f.calls = append(f.calls, toolID)
	if f.onCall != nil {
		return f.onCall(toolID, arguments)
	}
	return gw.CallResponse{Success: true, ToolID: toolID, Result: "ok"}, nil
}

func record(name string) core.ToolRecord {
	return core.ToolRecord{ToolID: name + ":abc", Name: name, Group: core.GroupOther, SchemaHash: "abc"}
}

func TestRunner_StatusAgent(t *testing.T) {
	caller := &fakeCaller{records: []core.ToolRecord{record("hwp_ping")}}
	r := New(caller)
	state, err := r.Run(context.Background(), "check status please")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.SelectedToolName != "hwp_ping" {
		t.Fatalf("expected hwp_ping selected, got %q", state.SelectedToolName)
	}
	if state.Error != "" {
		t.Fatalf("unexpected error state: %q", state.Error)
	}
}

func TestExtractSearchKeyword_NoUsableToken(t *testing.T) {
	if _, ok := extractSearchKeyword("a b c"); ok {
		t.Fatal("expected no usable keyword among single-character tokens")
	}
}

func TestRunner_SearchMissingKeyword(t *testing.T) {
	caller := &fakeCaller{records: []core.ToolRecord{record("hwp_find")}}
	r := New(caller)
	s := State{
		Subagent:    SubagentSearch,
		Message:     "a b c",
		ToolsByName: map[string]core.ToolRecord{"hwp_find": record("hwp_find")},
	}
	state, err := r.dispatch(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Error != "missing_search_keyword" {
		t.Fatalf("expected missing_search_keyword, got %q", state.Error)
	}
	if len(caller.calls) != 0 {
		t.Fatalf("expected no tool calls, got %v", caller.calls)
	}
}

func TestRunner_SearchWithQuotedKeyword(t *testing.T) {
	caller := &fakeCaller{records: []core.ToolRecord{record("hwp_find")}}
	r := New(caller)
	state, err := r.Run(context.Background(), `find "invoice"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.SelectedToolName != "hwp_find" {
		t.Fatalf("expected hwp_find selected, got %q", state.SelectedToolName)
	}
	if state.Arguments["text"] != "invoice" {
		t.Fatalf("expected text=invoice, got %v", state.Arguments)
	}
}

func TestRunner_NoMatchingSubagent(t *testing.T) {
	caller := &fakeCaller{records: []core.ToolRecord{record("hwp_unrelated")}}
	r := New(caller)
	state, err := r.Run(context.Background(), "완전히 알 수 없는 요청입니다")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Error != "no_matching_subagent" {
		t.Fatalf("expected no_matching_subagent, got %q", state.Error)
	}
	if state.Reply == "" {
		t.Fatal("expected a recovery reply naming available tools")
	}
}

func TestRunner_GatewayFailureSurfaces(t *testing.T) {
	caller := &fakeCaller{
		records: []core.ToolRecord{record("hwp_ping")},
		onCall: func(toolID string, args map[string]any) (gw.CallResponse, error) {
			return gw.CallResponse{Success: false, Message: "backend down"}, nil
		},
	}
	r := New(caller)
	state, err := r.Run(context.Background(), "status")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Error != "backend down" {
		t.Fatalf("expected backend down, got %q", state.Error)
	}
}

func TestAllowList_StatusIntent(t *testing.T) {
	tools := map[string]core.ToolRecord{
		"hwp_ping":          record("hwp_ping"),
		"hwp_platform_info": record("hwp_platform_info"),
	}
	names := AllowList("status check", tools)
	if len(names) != 2 {
		t.Fatalf("expected 2 allow-listed tools, got %v", names)
	}
}
