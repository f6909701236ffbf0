// Package openrouter implements modelagent.Client against OpenRouter's
// OpenAI-compatible chat-completions API, the one external-model protocol
// the gateway speaks.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	moderr "github.com/hwpx-agentic/gateway/errors"
	"github.com/hwpx-agentic/gateway/internal/config"
	"github.com/hwpx-agentic/gateway/internal/modelagent"
	"github.com/hwpx-agentic/gateway/internal/providers/retry"
)

const endpoint = "https://openrouter.ai/api/v1/chat/completions"

// Client calls the OpenRouter chat-completions endpoint.
type Client struct {
	apiKey     string
	siteURL    string
	siteName   string
	httpClient *http.Client
	logger     *slog.Logger
}

// New builds a Client from the agent's configured defaults. A nil hc is
// replaced by an http.Client with a 60-second timeout.
func New(ac config.AgentConfig, hc *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		apiKey:     ac.APIKey,
		siteURL:    ac.SiteURL,
		siteName:   ac.SiteName,
		httpClient: hc,
		logger:     logger,
	}
}

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []map[string]any `json:"messages"`
	Tools       []map[string]any `json:"tools,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature float32          `json:"temperature,omitempty"`
	TopP        float32          `json:"top_p,omitempty"`
	Provider    *providerRouting `json:"provider,omitempty"`
}

// providerRouting shapes OpenRouter's upstream-provider selection block.
type providerRouting struct {
	Order         []string `json:"order,omitempty"`
	Quantizations []string `json:"quantizations,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   any `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Call sends one chat-completions round trip, translating the gateway's
// modelagent protocol types to and from OpenRouter's wire shape.
func (c *Client) Call(ctx context.Context, params modelagent.CallParams) (modelagent.RawResponse, error) {
	if c.apiKey == "" {
		return modelagent.RawResponse{}, moderr.ErrMissingAPIKey
	}
	payload := chatRequest{
		Model:       params.Model,
		Messages:    mapMessages(params.Messages),
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
	}
	if len(params.ProviderOrder) > 0 || len(params.Quantizations) > 0 {
		payload.Provider = &providerRouting{Order: params.ProviderOrder, Quantizations: params.Quantizations}
	}
	if len(params.ToolDefs) > 0 {
		payload.Tools = mapTools(params.ToolDefs)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return modelagent.RawResponse{}, fmt.Errorf("openrouter marshal payload: %w", err)
	}

	var rr chatResponse
	err = retry.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		if c.siteURL != "" {
			req.Header.Set("HTTP-Referer", c.siteURL)
		}
		if c.siteName != "" {
			req.Header.Set("X-Title", c.siteName)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			b, _ := io.ReadAll(resp.Body)
			return retry.NewHTTPStatusError(resp.StatusCode, string(b), "openrouter")
		}
		return json.NewDecoder(resp.Body).Decode(&rr)
	})
	if err != nil {
		return modelagent.RawResponse{}, err
	}

	out := modelagent.RawResponse{
		Usage: modelagent.Usage{
			PromptTokens:     rr.Usage.PromptTokens,
			CompletionTokens: rr.Usage.CompletionTokens,
			TotalTokens:      rr.Usage.TotalTokens,
		},
	}
	if len(rr.Choices) == 0 {
		return out, nil
	}

	msg := rr.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		out.ToolCalls = make([]modelagent.ToolCall, len(msg.ToolCalls))
		for i, tc := range msg.ToolCalls {
			out.ToolCalls[i] = modelagent.ToolCall{
				CallID: tc.ID,
				Name:   tc.Function.Name,
				Args:   json.RawMessage(tc.Function.Arguments),
			}
		}
		return out, nil
	}

	switch v := msg.Content.(type) {
	case string:
		out.Content = v
	case []any:
		out.Content = joinTextParts(v)
	}
	return out, nil
}

func joinTextParts(parts []any) string {
	var acc string
	for _, p := range parts {
		m, ok := p.(map[string]any)
		if !ok || m["type"] != "text" {
			continue
		}
		s, ok := m["text"].(string)
		if !ok {
			continue
		}
		if acc == "" {
			acc = s
		} else {
			acc += "\n" + s
		}
	}
	return acc
}

func mapMessages(msgs []modelagent.Message) []map[string]any {
	out := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		if len(m.ToolCalls) > 0 {
			tc := make([]map[string]any, 0, len(m.ToolCalls))
			for _, it := range m.ToolCalls {
				argsStr := "{}"
				if len(it.Args) > 0 {
					argsStr = string(it.Args)
				}
				tc = append(tc, map[string]any{
					"type": "function",
					"id":   it.CallID,
					"function": map[string]any{
						"name":      it.Name,
						"arguments": argsStr,
					},
				})
			}
			out = append(out, map[string]any{
				"role":       m.Role,
				"content":    "",
				"tool_calls": tc,
			})
			continue
		}
		if len(m.ToolResults) > 0 {
			for _, tr := range m.ToolResults {
				out = append(out, map[string]any{
					"role":         "tool",
					"tool_call_id": tr.CallID,
					"name":         tr.Name,
					"content":      toolResultContent(tr.Result),
				})
			}
			continue
		}
		content := []any{}
		if m.Content != "" {
			content = append(content, map[string]any{"type": "text", "text": m.Content})
		}
		for _, img := range m.Images {
			content = append(content, map[string]any{"type": "image_url", "image_url": map[string]any{"url": img}})
		}
		out = append(out, map[string]any{
			"role":    m.Role,
			"content": content,
		})
	}
	return out
}

// toolResultContent marshals a tool result to a JSON string, falling back
// to a JSON error envelope when the result itself can't be marshaled.
func toolResultContent(result any) string {
	b, err := json.Marshal(result)
	if err != nil {
		errBody, _ := json.Marshal(map[string]any{"error": err.Error()})
		return string(errBody)
	}
	return string(b)
}

func mapTools(defs []modelagent.ToolDef) []map[string]any {
	out := make([]map[string]any, len(defs))
	for i, d := range defs {
		out[i] = map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        d.Name,
				"description": d.Description,
				"parameters":  coerceParams(d.JSONSchema),
			},
		}
	}
	return out
}

// coerceParams ensures the parameters JSON meets chat-completions
// expectations for a function's JSON Schema (object at the top level).
func coerceParams(schema string) any {
	var m map[string]any
	if err := json.Unmarshal([]byte(schema), &m); err != nil || m == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	if t, _ := m["type"].(string); t == "" || t == "null" {
		m["type"] = "object"
	}
	if _, ok := m["properties"]; !ok {
		m["properties"] = map[string]any{}
	}
	return m
}
