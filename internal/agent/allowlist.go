package agent

import "github.com/hwpx-agentic/gateway/internal/core"

// AllowList runs the same classification and subagent selection as Run,
// but stops short of calling anything: it returns the distinct candidate
// tool names the routed subagent would have tried, filtered to names that
// actually exist in tools and in priority order. The external-model agent
// uses this as the function-calling manifest allow-list.
func AllowList(message string, tools map[string]core.ToolRecord) []string {
	s := State{Message: message, ToolsByName: tools}
	s.Intent = classifyIntent(s.Message)
	s.Case = classifyCase(s.Message, toolNames(s.ToolsByName))
	s.Subagent = routeSubagent(s.Intent, s.Case)

	var candidates []candidateCall
	switch s.Subagent {
	case SubagentStatus:
		candidates = statusAgent(s)
	case SubagentTemplate:
		candidates = templateAgent(s)
	case SubagentDocument:
		candidates = documentAgent(s)
	case SubagentExport:
		candidates = exportAgent(s)
	case SubagentSearch:
		if c, ok := searchAgent(s); ok {
			candidates = c
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, exists := tools[c.toolName]; !exists {
			continue
		}
		if _, dup := seen[c.toolName]; dup {
			continue
		}
		seen[c.toolName] = struct{}{}
		names = append(names, c.toolName)
	}
	return names
}
