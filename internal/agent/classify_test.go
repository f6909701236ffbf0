package agent

import "testing"

func TestClassifyIntent_EnglishAndKorean(t *testing.T) {
	cases := map[string]Intent{
		"what is the status":   IntentStatus,
		"상태 확인해줘":             IntentStatus,
		"export this to pdf":   IntentExportPDF,
		"템플릿 목록 보여줘":          IntentTemplate,
		"please save the file": IntentSave,
		"find \"hello\"":       IntentSearch,
		"완전히 알 수 없는 메시지입니다":  IntentUnknown,
	}
	for msg, want := range cases {
		if got := classifyIntent(msg); got != want {
			t.Errorf("classifyIntent(%q) = %q, want %q", msg, got, want)
		}
	}
}

func TestClassifyCase_TemplateWorkflow(t *testing.T) {
	tools := map[string]struct{}{"hwp_list_templates": {}}
	if got := classifyCase("show me a template", tools); got != CaseTemplateWorkflow {
		t.Fatalf("got %q, want template_workflow", got)
	}
}

func TestClassifyCase_WindowsComFull(t *testing.T) {
	tools := map[string]struct{}{"hwp_windows_insert_text": {}}
	if got := classifyCase("anything", tools); got != CaseWindowsComFull {
		t.Fatalf("got %q, want windows_com_full", got)
	}
}

func TestClassifyCase_QueryAnalyzeOnly(t *testing.T) {
	tools := map[string]struct{}{"hwp_xml_get": {}, "hwp_xpath_query": {}}
	if got := classifyCase("anything", tools); got != CaseQueryAnalyzeOnly {
		t.Fatalf("got %q, want query_analyze_only", got)
	}
}

func TestClassifyCase_DegradedRecoveryFallback(t *testing.T) {
	tools := map[string]struct{}{"hwp_unrelated_tool": {}}
	if got := classifyCase("anything", tools); got != CaseDegradedRecovery {
		t.Fatalf("got %q, want degraded_recovery", got)
	}
}

func TestRouteSubagent(t *testing.T) {
	cases := []struct {
		intent Intent
		kase   Case
		want   Subagent
	}{
		{IntentStatus, CaseDegradedRecovery, SubagentStatus},
		{IntentCapabilities, CaseDegradedRecovery, SubagentStatus},
		{IntentTemplate, CaseDegradedRecovery, SubagentTemplate},
		{IntentUnknown, CaseTemplateWorkflow, SubagentTemplate},
		{IntentExportPDF, CaseDegradedRecovery, SubagentExport},
		{IntentSearch, CaseDegradedRecovery, SubagentSearch},
		{IntentCreate, CaseDegradedRecovery, SubagentDocument},
		{IntentInsertText, CaseDegradedRecovery, SubagentDocument},
		{IntentSave, CaseDegradedRecovery, SubagentDocument},
		{IntentUnknown, CaseDegradedRecovery, SubagentRecovery},
	}
	for _, c := range cases {
		if got := routeSubagent(c.intent, c.kase); got != c.want {
			t.Errorf("routeSubagent(%q, %q) = %q, want %q", c.intent, c.kase, got, c.want)
		}
	}
}
