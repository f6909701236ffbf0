// Package modelagent runs the external-model agent: an OpenRouter-backed
// function-calling loop that hands the gateway's own tools to a remote
// chat model and relays its tool calls through the Gateway, up to a bounded
// number of rounds.
package modelagent

import (
	"context"
	"encoding/json"
)

// Message is one entry of the chat transcript sent to the model. Only the
// fields relevant to a given role are populated: a "tool" message carries
// ToolResults, an "assistant" message with pending calls carries
// ToolCalls, everything else carries Content (and optionally Images).
type Message struct {
	Role        string
	Content     string
	Images      []string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// ToolCall is one function call the model asked for.
type ToolCall struct {
	CallID string
	Name   string
	Args   json.RawMessage
}

// ToolResult is the gateway's answer to one ToolCall, keyed back to it by
// CallID so the model can attribute it correctly.
type ToolResult struct {
	CallID string
	Name   string
	Result any
}

// ToolDef is one entry of the function-calling manifest offered to the
// model: a tool name, description and JSON-Schema-encoded parameter shape.
type ToolDef struct {
	Name        string
	Description string
	JSONSchema  string
}

// CallParams is one round-trip request to the model. ProviderOrder and
// Quantizations shape OpenRouter's upstream-provider routing (its
// "provider": {"order": [...], "quantizations": [...]} request block);
// both are optional.
type CallParams struct {
	Model         string
	Messages      []Message
	ToolDefs      []ToolDef
	MaxTokens     int
	Temperature   float32
	TopP          float32
	ProviderOrder []string
	Quantizations []string
}

// Usage reports token accounting for one model call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// RawResponse is the model's answer to one CallParams: either a final
// textual Content, or one or more ToolCalls to satisfy before continuing.
type RawResponse struct {
	Content   string
	ToolCalls []ToolCall
	Usage     Usage
}

// Client is the narrow capability the loop needs from a model backend.
type Client interface {
	Call(ctx context.Context, params CallParams) (RawResponse, error)
}
