package util

import "testing"

func TestArgSchemaFor_KnownTool(t *testing.T) {
	schema, ok := ArgSchemaFor("hwp_export_pdf")
	if !ok {
		t.Fatal("expected typed shape for hwp_export_pdf")
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected properties map, got %v", schema["properties"])
	}
	if _, ok := props["output_path"]; !ok {
		t.Fatalf("expected output_path property, got %v", props)
	}
}

func TestArgSchemaFor_UnknownTool(t *testing.T) {
	if _, ok := ArgSchemaFor("hwp_totally_unknown_tool"); ok {
		t.Fatal("expected no typed shape for unknown tool")
	}
}
