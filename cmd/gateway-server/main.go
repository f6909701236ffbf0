// Command gateway-server runs the five gateway operations as a
// newline-delimited JSON RPC surface over stdin/stdout, gated by
// MCP_TRANSPORT=stdio (spec.md §6, phase 1 supports only this transport).
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	gw "github.com/hwpx-agentic/gateway"
	"github.com/hwpx-agentic/gateway/internal/config"
	"github.com/hwpx-agentic/gateway/internal/mcpbackend"
)

// rpcRequest is one line of stdin: {"op":"tool_search","params":{...}}.
type rpcRequest struct {
	Op     string          `json:"op"`
	Params json.RawMessage `json:"params"`
}

// rpcResponse is one line of stdout: either a result or an error, never
// both, tagged with a correlation id for log cross-referencing.
type rpcResponse struct {
	ID     string  `json:"id"`
	Result any     `json:"result,omitempty"`
	Error  *rpcErr `json:"error,omitempty"`
}

type rpcErr struct {
	Message string `json:"message"`
}

func main() {
	logger := slog.Default()

	transport := os.Getenv("MCP_TRANSPORT")
	if transport == "" {
		transport = "stdio"
	}
	if transport != "stdio" {
		logger.Error("unsupported transport", slog.String("transport", transport))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("config load failed, continuing with defaults", slog.Any("error", err))
		cfg = &config.GatewayConfig{}
	}

	backend := mcpbackend.New(mcpbackend.Config{
		Command: firstNonEmpty(os.Getenv("HWPX_BACKEND_COMMAND"), "hwpx-mcp-server"),
		Args:    splitArgs(os.Getenv("HWPX_BACKEND_ARGS")),
	})
	defer backend.Close()

	gateway := gw.New(backend, gw.WithLogger(logger))
	_ = cfg

	runStdioLoop(context.Background(), gateway, logger)
}

func runStdioLoop(ctx context.Context, gateway *gw.Gateway, logger *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	encoder := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		id := uuid.NewString()
		var req rpcRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			_ = encoder.Encode(rpcResponse{ID: id, Error: &rpcErr{Message: "invalid request: " + err.Error()}})
			continue
		}

		result, err := dispatch(ctx, gateway, req)
		if err != nil {
			logger.Error("rpc call failed", slog.String("op", req.Op), slog.String("id", id), slog.Any("error", err))
			_ = encoder.Encode(rpcResponse{ID: id, Error: &rpcErr{Message: err.Error()}})
			continue
		}
		_ = encoder.Encode(rpcResponse{ID: id, Result: result})
	}
}

func dispatch(ctx context.Context, gateway *gw.Gateway, req rpcRequest) (any, error) {
	switch req.Op {
	case "tool_registry_refresh":
		return gateway.RefreshRegistry(ctx)

	case "tool_search":
		var p struct {
			Query string `json:"query"`
			K     int    `json:"k"`
			Group string `json:"group"`
		}
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		if p.K == 0 {
			p.K = 8
		}
		return gateway.ToolSearch(ctx, p.Query, p.K, p.Group)

	case "tool_describe":
		var p struct {
			ToolID string `json:"tool_id"`
		}
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		return gateway.ToolDescribe(ctx, p.ToolID)

	case "tool_call":
		var p struct {
			ToolID    string         `json:"tool_id"`
			Arguments map[string]any `json:"arguments"`
		}
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		return gateway.ToolCall(ctx, p.ToolID, p.Arguments)

	case "route_and_call":
		var p struct {
			Query     string         `json:"query"`
			Arguments map[string]any `json:"arguments"`
			TopK      int            `json:"top_k"`
		}
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		if p.TopK == 0 {
			p.TopK = 1
		}
		return gateway.RouteAndCall(ctx, p.Query, p.Arguments, p.TopK)

	default:
		return nil, fmt.Errorf("unknown op: %s", req.Op)
	}
}

func decodeParams(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitArgs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
