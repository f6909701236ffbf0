package agent

import (
	"strings"
)

// intentKeywords is checked in order; the first intent whose keyword list
// has a substring match against the lowercased message wins. Keyword lists
// are bilingual (English + Korean) to match the messages the gateway's
// users actually send.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentStatus, []string{"status", "ping", "상태", "핑"}},
	{IntentCapabilities, []string{"capabilit", "할 수 있", "기능"}},
	{IntentTemplate, []string{"template", "템플릿", "양식"}},
	{IntentExportPDF, []string{"export pdf", "pdf", "내보내기"}},
	{IntentSave, []string{"save", "저장"}},
	{IntentSearch, []string{"search", "find", "찾아", "검색"}},
	{IntentInsertText, []string{"insert", "삽입", "입력"}},
	{IntentCreate, []string{"create", "new document", "생성", "새 문서"}},
}

// classifyIntent returns the first matching intent, or IntentUnknown.
func classifyIntent(message string) Intent {
	lowered := strings.ToLower(message)
	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				return entry.intent
			}
		}
	}
	return IntentUnknown
}

// classifyCase inspects the set of tool names currently in the registry
// (plus the raw message, for the template case) and returns the first
// matching deployment case.
func classifyCase(message string, tools map[string]struct{}) Case {
	if mentionsTemplate(message) && hasTool(tools, "hwp_list_templates") {
		return CaseTemplateWorkflow
	}
	if hasToolPrefix(tools, "hwp_windows_") {
		return CaseWindowsComFull
	}
	if len(tools) > 0 && allToolsAnalysisOnly(tools) {
		return CaseQueryAnalyzeOnly
	}
	if hasTool(tools, "hwp_create_hwpx") {
		return CaseCrossPlatformHWPX
	}
	if hasTool(tools, "hwp_create") || hasTool(tools, "hwp_insert_text") || hasTool(tools, "hwp_save") {
		return CaseNoDocumentContext
	}
	return CaseDegradedRecovery
}

func mentionsTemplate(message string) bool {
	lowered := strings.ToLower(message)
	return strings.Contains(lowered, "template") || strings.Contains(lowered, "템플릿") || strings.Contains(lowered, "양식")
}

func hasTool(tools map[string]struct{}, name string) bool {
	_, ok := tools[name]
	return ok
}

func hasToolPrefix(tools map[string]struct{}, prefix string) bool {
	for name := range tools {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func allToolsAnalysisOnly(tools map[string]struct{}) bool {
	for name := range tools {
		if !strings.Contains(name, "xml") && !strings.Contains(name, "xpath") && !strings.Contains(name, "smart_patch") {
			return false
		}
	}
	return true
}

// routeSubagent maps (intent, case) to the subagent node per §4.10's
// routing table; case overrides intent only for the template workflow.
func routeSubagent(intent Intent, kase Case) Subagent {
	switch intent {
	case IntentStatus, IntentCapabilities:
		return SubagentStatus
	case IntentExportPDF:
		return SubagentExport
	case IntentSearch:
		return SubagentSearch
	case IntentCreate, IntentInsertText, IntentSave:
		return SubagentDocument
	}
	if intent == IntentTemplate || kase == CaseTemplateWorkflow {
		return SubagentTemplate
	}
	return SubagentRecovery
}
