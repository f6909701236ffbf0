package agent

import (
	"context"
	"fmt"

	gw "github.com/hwpx-agentic/gateway"
	"github.com/hwpx-agentic/gateway/internal/core"
)

// ToolCaller is the narrow capability the agent needs from a Gateway:
// enough to list the current registry and invoke a tool by id. *gw.Gateway
// satisfies this directly.
type ToolCaller interface {
	Registry() []core.ToolRecord
	ToolCall(ctx context.Context, toolID string, arguments map[string]any) (gw.CallResponse, error)
}

// Runner executes the Tool-Only Agent FSM over one Gateway.
type Runner struct {
	gateway ToolCaller
}

// New builds a Runner over gateway.
func New(gateway ToolCaller) *Runner {
	return &Runner{gateway: gateway}
}

// Run drives the FSM start to finish for one user message:
// prepare -> classify -> route -> subagent -> finalize.
func (r *Runner) Run(ctx context.Context, message string) (State, error) {
	// Registry() only reads the current snapshot, so a Gateway that has not
	// built one yet is refreshed here before prepare reads it.
	if refresher, ok := r.gateway.(interface {
		RefreshRegistry(ctx context.Context) (gw.RefreshResult, error)
	}); ok && len(r.gateway.Registry()) == 0 {
		if _, err := refresher.RefreshRegistry(ctx); err != nil {
			return State{}, err
		}
	}
	state := r.prepare(message)
	state.Intent = classifyIntent(state.Message)
	state.Case = classifyCase(state.Message, toolNames(state.ToolsByName))
	state.Subagent = routeSubagent(state.Intent, state.Case)
	state, err := r.dispatch(ctx, state)
	if err != nil {
		return State{}, err
	}
	return r.finalize(state), nil
}

// prepare refreshes nothing itself (Run has already triggered the first
// registry build when the snapshot was empty) but snapshots the current
// registry into a name-keyed map.
func (r *Runner) prepare(message string) State {
	records := r.gateway.Registry()
	byName := make(map[string]core.ToolRecord, len(records))
	for _, rec := range records {
		byName[rec.Name] = rec
	}
	return State{Message: message, ToolsByName: byName}
}

// dispatch runs the subagent the route picked, then calls the first
// available candidate tool it proposes.
func (r *Runner) dispatch(ctx context.Context, s State) (State, error) {
	switch s.Subagent {
	case SubagentStatus:
		return r.callFirstAvailable(ctx, s, statusAgent(s))
	case SubagentTemplate:
		return r.callFirstAvailable(ctx, s, templateAgent(s))
	case SubagentDocument:
		return r.callFirstAvailable(ctx, s, documentAgent(s))
	case SubagentExport:
		return r.callFirstAvailable(ctx, s, exportAgent(s))
	case SubagentSearch:
		candidates, ok := searchAgent(s)
		if !ok {
			s.Reply = "please quote the keyword to search for"
			return s.withError("missing_search_keyword"), nil
		}
		return r.callFirstAvailable(ctx, s, candidates)
	default:
		s.Reply = recoveryReply(toolNames(s.ToolsByName))
		return s.withError("no_matching_subagent"), nil
	}
}

// callFirstAvailable walks candidates in order, normalizing arguments per
// tool and calling the first one present in the registry. A registry miss
// moves to the next candidate; a call failure stops and reports the error
// (the Python original's "tool_call_failed" state).
func (r *Runner) callFirstAvailable(ctx context.Context, s State, candidates []candidateCall) (State, error) {
	for _, c := range candidates {
		record, ok := s.ToolsByName[c.toolName]
		if !ok {
			continue
		}
		args := normalizeArguments(c.toolName, c.args)

		resp, err := r.gateway.ToolCall(ctx, record.ToolID, args)
		if err != nil {
			return s, fmt.Errorf("tool_call_failed: %w", err)
		}
		s.SelectedToolName = c.toolName
		s.Arguments = args
		if !resp.Success {
			s.Error = "invalid_gateway_response"
			if resp.Message != "" {
				s.Error = resp.Message
			}
			return s, nil
		}
		s.Result = resp.Result
		return s, nil
	}
	return s.withError("tool_not_selected"), nil
}

// finalize produces the user-visible reply when a subagent hasn't already
// set one.
func (r *Runner) finalize(s State) State {
	if s.Reply != "" {
		return s
	}
	if s.SelectedToolName == "" {
		return s.withError("tool_not_selected")
	}
	s.Reply = fmt.Sprintf("[%s] 실행 완료\n%v", s.SelectedToolName, s.Result)
	return s
}
