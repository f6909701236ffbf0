package modelagent

import (
	"context"
	"encoding/json"
	"fmt"

	gw "github.com/hwpx-agentic/gateway"
	"github.com/hwpx-agentic/gateway/internal/agent"
	moderr "github.com/hwpx-agentic/gateway/errors"
	"github.com/hwpx-agentic/gateway/internal/core"
	"github.com/hwpx-agentic/gateway/internal/util"
)

const maxRounds = 8

// ToolGateway is the narrow capability the loop needs: list the current
// registry and call a tool by id, same as agent.ToolCaller.
type ToolGateway interface {
	Registry() []core.ToolRecord
	ToolCall(ctx context.Context, toolID string, arguments map[string]any) (gw.CallResponse, error)
}

// Runner drives the external-model agent loop over one Client and Gateway.
type Runner struct {
	client  Client
	gateway ToolGateway
}

// New builds a Runner.
func New(client Client, gateway ToolGateway) *Runner {
	return &Runner{client: client, gateway: gateway}
}

// Result is the outcome of one Run call.
type Result struct {
	Reply     string
	Rounds    int
	ToolCalls []string
	Usage     Usage
}

// Run translates the same classification/subagent selection as the
// Tool-Only Agent into a function-calling allow-list, then runs up to
// maxRounds of model <-> tool exchanges until the model emits a terminal
// assistant message.
func (r *Runner) Run(ctx context.Context, model, systemPrompt, userMessage string) (Result, error) {
	records := r.gateway.Registry()
	byName := make(map[string]core.ToolRecord, len(records))
	for _, rec := range records {
		byName[rec.Name] = rec
	}

	allowed := agent.AllowList(userMessage, byName)
	toolDefs := make([]ToolDef, 0, len(allowed))
	for _, name := range allowed {
		rec := byName[name]
		toolDefs = append(toolDefs, ToolDef{
			Name:        rec.Name,
			Description: rec.Description,
			JSONSchema:  schemaForTool(rec),
		})
	}

	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userMessage},
	}

	result := Result{}
	for round := 0; round < maxRounds; round++ {
		result.Rounds = round + 1
		resp, err := r.client.Call(ctx, CallParams{
			Model:    model,
			Messages: messages,
			ToolDefs: toolDefs,
		})
		if err != nil {
			return Result{}, err
		}
		result.Usage.PromptTokens += resp.Usage.PromptTokens
		result.Usage.CompletionTokens += resp.Usage.CompletionTokens
		result.Usage.TotalTokens += resp.Usage.TotalTokens

		if len(resp.ToolCalls) == 0 {
			if resp.Content == "" {
				return Result{}, moderr.ErrInvalidModelResponse
			}
			result.Reply = resp.Content
			return result, nil
		}

		messages = append(messages, Message{Role: "assistant", ToolCalls: resp.ToolCalls})

		results := make([]ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			result.ToolCalls = append(result.ToolCalls, call.Name)
			toolResult := r.executeCall(ctx, byName, call)
			results = append(results, toolResult)
		}
		messages = append(messages, Message{Role: "tool", ToolResults: results})
	}

	return Result{}, moderr.ErrMaxRoundsExceeded
}

// executeCall resolves a model-requested tool call against the registry
// and forwards it through the Gateway, converting failures into a
// ToolResult payload the model can see rather than aborting the loop.
func (r *Runner) executeCall(ctx context.Context, byName map[string]core.ToolRecord, call ToolCall) ToolResult {
	record, ok := byName[call.Name]
	if !ok {
		return ToolResult{CallID: call.CallID, Name: call.Name, Result: map[string]any{"error": "unknown tool: " + call.Name}}
	}

	var args map[string]any
	if len(call.Args) > 0 {
		if err := json.Unmarshal(call.Args, &args); err != nil {
			// gpt-oss-class models served over OpenRouter occasionally wrap
			// function-call arguments in a markdown fence; try the same
			// repair the structured-output path uses before giving up.
			repaired, ok := util.RepairJSON(string(call.Args))
			if !ok {
				return ToolResult{CallID: call.CallID, Name: call.Name, Result: map[string]any{"error": fmt.Sprintf("invalid arguments: %v", err)}}
			}
			if err := json.Unmarshal([]byte(repaired), &args); err != nil {
				return ToolResult{CallID: call.CallID, Name: call.Name, Result: map[string]any{"error": fmt.Sprintf("invalid arguments: %v", err)}}
			}
		}
	}

	resp, err := r.gateway.ToolCall(ctx, record.ToolID, args)
	if err != nil {
		return ToolResult{CallID: call.CallID, Name: call.Name, Result: map[string]any{"error": err.Error()}}
	}
	if !resp.Success {
		return ToolResult{CallID: call.CallID, Name: call.Name, Result: map[string]any{"error": resp.Message}}
	}
	return ToolResult{CallID: call.CallID, Name: call.Name, Result: resp.Result}
}

// schemaForTool prefers a typed argument-shape schema when one is
// registered for this tool name, falling back to the raw backend-reported
// input schema.
func schemaForTool(rec core.ToolRecord) string {
	const emptyObjectSchema = `{"type":"object","properties":{}}`

	if schema, ok := util.ArgSchemaFor(rec.Name); ok {
		if b, err := json.Marshal(schema); err == nil {
			return string(b)
		}
	}
	if rec.InputSchema == nil {
		return emptyObjectSchema
	}
	b, err := json.Marshal(rec.InputSchema)
	if err != nil {
		return emptyObjectSchema
	}
	return string(b)
}
