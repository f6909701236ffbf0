// Package mcpbackend implements gateway.Backend against an external MCP
// tool host spoken to over a child process's stdio, the way
// vibeauracle's internal/tooling.MCPClient drives its own subprocess MCP
// server: a newline-delimited JSON-RPC 2.0 request/response pair per
// call, synchronized by a single mutex since the protocol has no
// built-in multiplexing.
package mcpbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	gw "github.com/hwpx-agentic/gateway"
)

// Config names the subprocess to launch and the environment it inherits
// in addition to the current process's own environment.
type Config struct {
	Command string
	Args    []string
	Env     []string
}

// Client is a gw.Backend backed by one long-lived MCP subprocess.
type Client struct {
	cfg Config

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  *json.Encoder
	stdout *json.Decoder
	nextID int
}

// New builds a Client for cfg; the subprocess is not started until Start
// is called (or implicitly on first ListTools/CallTool).
func New(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// Start launches the configured subprocess and wires its stdio. Calling
// Start more than once is a no-op once the subprocess is running.
func (c *Client) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLocked()
}

func (c *Client) startLocked() error {
	if c.cmd != nil {
		return nil
	}
	cmd := exec.Command(c.cfg.Command, c.cfg.Args...)
	cmd.Env = append(os.Environ(), c.cfg.Env...)
	cmd.Stderr = os.Stderr

	in, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	c.cmd = cmd
	c.stdin = json.NewEncoder(in)
	c.stdout = json.NewDecoder(out)
	return nil
}

// Close terminates the subprocess, if running.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd == nil || c.cmd.Process == nil {
		return nil
	}
	return c.cmd.Process.Kill()
}

type jsonRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *jsonRPCError) Error() string { return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message) }

type listToolsResponse struct {
	Result struct {
		Tools []rawTool `json:"tools"`
	} `json:"result"`
	Error *jsonRPCError `json:"error"`
}

type rawTool struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	InputSchema  map[string]any `json:"inputSchema"`
	OutputSchema map[string]any `json:"outputSchema"`
}

// ListTools asks the subprocess for its current tool catalog via the
// "tools/list" MCP method.
func (c *Client) ListTools(ctx context.Context) ([]gw.ToolDump, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.startLocked(); err != nil {
		return nil, err
	}

	c.nextID++
	req := jsonRPCRequest{JSONRPC: "2.0", ID: c.nextID, Method: "tools/list", Params: map[string]any{}}
	if err := c.stdin.Encode(req); err != nil {
		return nil, err
	}

	var resp listToolsResponse
	if err := c.stdout.Decode(&resp); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("mcp subprocess closed stdout")
		}
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	dumps := make([]gw.ToolDump, len(resp.Result.Tools))
	for i, t := range resp.Result.Tools {
		dumps[i] = gw.ToolDump{
			Name:         t.Name,
			Description:  t.Description,
			InputSchema:  t.InputSchema,
			OutputSchema: t.OutputSchema,
		}
	}
	return dumps, nil
}

type callToolResponse struct {
	Result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *jsonRPCError `json:"error"`
}

// CallTool invokes name on the subprocess via the "tools/call" MCP
// method and collapses its content array into the slice-of-any shape
// gateway.normalizeToolResult expects (each text part is handed through
// raw for JSON-or-keep parsing upstream).
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.startLocked(); err != nil {
		return nil, err
	}

	c.nextID++
	req := jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      c.nextID,
		Method:  "tools/call",
		Params:  map[string]any{"name": name, "arguments": arguments},
	}
	if err := c.stdin.Encode(req); err != nil {
		return nil, err
	}

	var resp callToolResponse
	if err := c.stdout.Decode(&resp); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("mcp subprocess closed stdout")
		}
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Result.IsError {
		return nil, fmt.Errorf("tool %s returned an error result", name)
	}

	content := make([]any, len(resp.Result.Content))
	for i, part := range resp.Result.Content {
		content[i] = textContent(part.Text)
	}
	return content, nil
}

// textContent adapts one content-array text part to gateway's
// contentItem interface so normalizeToolResult can JSON-decode it.
type textContent string

func (t textContent) Text() (string, bool) { return string(t), true }
