// Package httpapi exposes the Tool-Only Agent over the HTTP chat surface:
// GET /agent/health and POST /agent/chat, routed with gorilla/mux the way
// beluga-ai's REST server surfaces route their handlers.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hwpx-agentic/gateway/internal/agent"
)

// AgentRunner is the narrow capability the server needs from the
// Tool-Only Agent: drive the FSM for one message.
type AgentRunner interface {
	Run(ctx context.Context, message string) (agent.State, error)
}

// Defaults carries the process-wide external-model defaults reported back
// in every chat response's runtime block, and the env var the agent's API
// key is read from (never cached, never echoed back in full).
type Defaults struct {
	Provider  string
	Model     string
	APIKeyEnv string
}

// Server is the HTTP chat surface in front of one AgentRunner.
type Server struct {
	router   *mux.Router
	agent    AgentRunner
	defaults Defaults
	logger   *slog.Logger
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithLogger sets a custom slog logger.
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

// NewServer builds a Server in front of agentRunner with the given
// process-wide external-model defaults.
func NewServer(agentRunner AgentRunner, defaults Defaults, opts ...Option) *Server {
	s := &Server{
		agent:    agentRunner,
		defaults: defaults,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.router = mux.NewRouter()
	s.router.HandleFunc("/agent/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/agent/chat", s.handleChat).Methods(http.MethodPost)
	return s
}

// Handler returns the mux.Router as an http.Handler, for use with
// http.Server or httptest.
func (s *Server) Handler() http.Handler { return s.router }

type healthResponse struct {
	Status   string          `json:"status"`
	Surface  string          `json:"surface"`
	Defaults defaultsPayload `json:"defaults"`
}

type defaultsPayload struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Surface: "agent-http",
		Defaults: defaultsPayload{
			Provider: s.defaults.Provider,
			Model:    s.defaults.Model,
		},
	})
}

// chatRequest is the POST /agent/chat request body.
type chatRequest struct {
	Message   string           `json:"message"`
	SessionID string           `json:"session_id"`
	Runtime   *runtimeOverride `json:"runtime"`
}

type runtimeOverride struct {
	Provider *string `json:"provider"`
	Model    *string `json:"model"`
	APIKey   *string `json:"api_key"`
}

type runtimeInfo struct {
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	APIKeyPresent bool   `json:"api_key_present"`
}

// chatResponse is the POST /agent/chat response body: the final
// AgentState projected to the wire shape spec.md §6 defines.
type chatResponse struct {
	Success      bool           `json:"success"`
	Case         string         `json:"case,omitempty"`
	Intent       string         `json:"intent,omitempty"`
	Subagent     string         `json:"subagent,omitempty"`
	SelectedTool string         `json:"selected_tool,omitempty"`
	Arguments    map[string]any `json:"arguments,omitempty"`
	Reply        string         `json:"reply,omitempty"`
	Result       any            `json:"result,omitempty"`
	Error        string         `json:"error,omitempty"`
	Runtime      runtimeInfo    `json:"runtime"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json_body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "message_required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	runtime := s.resolveRuntime(req.Runtime)

	state, err := s.agent.Run(r.Context(), req.Message)
	if err != nil {
		s.logger.Error("agent run failed", slog.String("session_id", req.SessionID), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "agent_runtime_error: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Success:      state.Error == "",
		Case:         string(state.Case),
		Intent:       string(state.Intent),
		Subagent:     string(state.Subagent),
		SelectedTool: state.SelectedToolName,
		Arguments:    state.Arguments,
		Reply:        state.Reply,
		Result:       state.Result,
		Error:        state.Error,
		Runtime:      runtime,
	})
}

// resolveRuntime layers a per-request runtime override on top of the
// process-wide defaults and reads the API key presence from the
// environment at request time, never caching or echoing it back in full.
func (s *Server) resolveRuntime(override *runtimeOverride) runtimeInfo {
	provider := s.defaults.Provider
	model := s.defaults.Model
	apiKey := os.Getenv(s.defaults.APIKeyEnv)

	if override != nil {
		if override.Provider != nil && *override.Provider != "" {
			provider = *override.Provider
		}
		if override.Model != nil && *override.Model != "" {
			model = *override.Model
		}
		if override.APIKey != nil && *override.APIKey != "" {
			apiKey = *override.APIKey
		}
	}

	return runtimeInfo{
		Provider:      provider,
		Model:         model,
		APIKeyPresent: apiKey != "",
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
