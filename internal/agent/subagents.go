package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var quotedPattern = regexp.MustCompile(`["'“”](.+?)["'“”]`)

// extractQuoted returns the first quoted substring of message, if any.
func extractQuoted(message string) (string, bool) {
	m := quotedPattern.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// extractSearchKeyword returns the keyword a search subagent should use:
// the first quoted substring, or failing that the last token of at least
// two characters.
func extractSearchKeyword(message string) (string, bool) {
	if kw, ok := extractQuoted(message); ok && kw != "" {
		return kw, true
	}
	fields := strings.Fields(message)
	for i := len(fields) - 1; i >= 0; i-- {
		if len([]rune(fields[i])) >= 2 {
			return fields[i], true
		}
	}
	return "", false
}

// outputPath joins the current working directory with name, falling back
// to a bare relative name if the working directory can't be resolved.
func outputPath(name string) string {
	wd, err := os.Getwd()
	if err != nil {
		return name
	}
	return filepath.Join(wd, name)
}

// candidateCall is one (tool name, proposed arguments) pair a subagent
// offers call_first_available, in priority order.
type candidateCall struct {
	toolName string
	args     map[string]any
}

// statusAgent prefers capability-introspection tools when the intent was
// explicitly "capabilities", otherwise a liveness-first order.
func statusAgent(s State) []candidateCall {
	names := []string{"hwp_ping", "hwp_platform_info", "hwp_capabilities"}
	if s.Intent == IntentCapabilities {
		names = []string{"hwp_capabilities", "hwp_get_capabilities", "hwp_platform_info"}
	}
	return candidatesWithArgs(names, map[string]any{})
}

// templateAgent always calls with empty arguments.
func templateAgent(s State) []candidateCall {
	return candidatesWithArgs([]string{"hwp_list_templates", "hwp_search_template"}, map[string]any{})
}

// documentAgent branches on the classified intent: create, save, or the
// insert-text default.
func documentAgent(s State) []candidateCall {
	switch s.Intent {
	case IntentCreate:
		if payload, ok := extractQuoted(s.Message); ok {
			return []candidateCall{
				{"hwp_create_hwpx", map[string]any{"text": payload, "filename": "agent_output.hwpx"}},
			}
		}
		return []candidateCall{{"hwp_create", map[string]any{}}}
	case IntentSave:
		return candidatesWithArgs(
			[]string{"hwp_save", "hwp_save_document"},
			map[string]any{"path": outputPath("agent_output.hwpx")},
		)
	default:
		text, ok := extractQuoted(s.Message)
		if !ok {
			text = s.Message
		}
		return candidatesWithArgs(
			[]string{"hwp_insert_text", "hwp_windows_insert_text"},
			map[string]any{"text": text},
		)
	}
}

// exportAgent tries hwp_export_pdf first, then the generic hwp_save_as
// with format fixed to "pdf".
func exportAgent(s State) []candidateCall {
	return []candidateCall{
		{"hwp_export_pdf", map[string]any{"output_path": outputPath("agent_output.pdf")}},
		{"hwp_save_as", map[string]any{"path": outputPath("agent_output.pdf"), "format": "pdf"}},
	}
}

// searchAgent extracts a keyword from the message; an empty keyword
// short-circuits with a user-visible prompt instead of calling a tool.
// ok is false in that short-circuit case.
func searchAgent(s State) ([]candidateCall, bool) {
	kw, ok := extractSearchKeyword(s.Message)
	if !ok {
		return nil, false
	}
	return candidatesWithArgs([]string{"hwp_find", "hwp_search_text"},
		map[string]any{"text": kw, "query": kw}), true
}

// candidatesWithArgs pairs every name with the same proposed argument
// bundle; normalizeArguments trims it per-tool before the call is made.
func candidatesWithArgs(names []string, args map[string]any) []candidateCall {
	out := make([]candidateCall, len(names))
	for i, n := range names {
		out[i] = candidateCall{toolName: n, args: args}
	}
	return out
}

// recoveryReply names up to ten available tools for a user-visible
// fallback message when no subagent applies.
func recoveryReply(tools map[string]struct{}) string {
	names := make([]string, 0, len(tools))
	for n := range tools {
		names = append(names, n)
		if len(names) == 10 {
			break
		}
	}
	if len(names) == 0 {
		return "no tools are currently available"
	}
	return fmt.Sprintf("no matching action found; available tools include: %s", strings.Join(names, ", "))
}
