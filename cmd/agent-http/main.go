// Command agent-http runs the Tool-Only Agent behind the HTTP chat
// surface: GET /agent/health and POST /agent/chat (spec.md §6).
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/hwpx-agentic/gateway/internal/agent"
	gw "github.com/hwpx-agentic/gateway"
	"github.com/hwpx-agentic/gateway/internal/config"
	"github.com/hwpx-agentic/gateway/internal/httpapi"
	"github.com/hwpx-agentic/gateway/internal/mcpbackend"
)

func main() {
	logger := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("config load failed, continuing with defaults", slog.Any("error", err))
		cfg = &config.GatewayConfig{Host: "127.0.0.1", Port: 8787}
	}

	backend := mcpbackend.New(mcpbackend.Config{
		Command: firstNonEmpty(os.Getenv("HWPX_BACKEND_COMMAND"), "hwpx-mcp-server"),
	})
	defer backend.Close()

	gateway := gw.New(backend, gw.WithLogger(logger))
	runner := agent.New(gateway)

	defaults := httpapi.Defaults{
		Provider:  firstNonEmpty(os.Getenv("HWPX_AGENT_PROVIDER"), "cerebras/fp16"),
		Model:     firstNonEmpty(os.Getenv("HWPX_AGENT_MODEL"), "openai/gpt-oss-120b"),
		APIKeyEnv: "OPENROUTER_API_KEY",
	}

	server := httpapi.NewServer(runner, defaults, httpapi.WithLogger(logger))

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Info("agent http surface listening", slog.String("addr", addr))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
