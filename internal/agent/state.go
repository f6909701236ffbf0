// Package agent implements the deterministic Tool-Only Agent: a small
// finite state machine (prepare, classify, route, one of six subagents,
// finalize) that answers a user message using only rule-based intent
// classification and the gateway's tool catalog, with no external model
// in the loop.
package agent

import "github.com/hwpx-agentic/gateway/internal/core"

// Intent is the rule-based classification of a user message.
type Intent string

const (
	IntentStatus       Intent = "status"
	IntentCapabilities Intent = "capabilities"
	IntentTemplate     Intent = "template"
	IntentExportPDF    Intent = "export_pdf"
	IntentSave         Intent = "save"
	IntentSearch       Intent = "search"
	IntentInsertText   Intent = "insert_text"
	IntentCreate       Intent = "create"
	IntentUnknown      Intent = "unknown"
)

// Case is the deployment profile inferred from which tool names currently
// exist in the registry.
type Case string

const (
	CaseTemplateWorkflow  Case = "template_workflow"
	CaseWindowsComFull    Case = "windows_com_full"
	CaseQueryAnalyzeOnly  Case = "query_analyze_only"
	CaseCrossPlatformHWPX Case = "cross_platform_hwpx"
	CaseNoDocumentContext Case = "no_document_context"
	CaseDegradedRecovery  Case = "degraded_recovery"
)

// Subagent names the node the router dispatches to.
type Subagent string

const (
	SubagentStatus   Subagent = "status_agent"
	SubagentTemplate Subagent = "template_agent"
	SubagentDocument Subagent = "document_agent"
	SubagentExport   Subagent = "export_agent"
	SubagentSearch   Subagent = "search_agent"
	SubagentRecovery Subagent = "recovery_agent"
)

// State carries the FSM's accumulated decisions. Each node returns a new
// State built from the one it received; nothing is mutated behind the
// caller's back.
type State struct {
	Message     string
	ToolsByName map[string]core.ToolRecord

	Intent Intent
	Case   Case

	Subagent         Subagent
	SelectedToolName string
	Arguments        map[string]any

	Result any
	Error  string
	Reply  string
}

// withError returns a copy of s carrying the given error code; Reply is
// left to the caller since some errors pair with a specific user-facing
// message and some don't.
func (s State) withError(code string) State {
	s.Error = code
	return s
}

// toolNames returns the registry's tool name set, for case detection.
func toolNames(tools map[string]core.ToolRecord) map[string]struct{} {
	names := make(map[string]struct{}, len(tools))
	for name := range tools {
		names[name] = struct{}{}
	}
	return names
}
