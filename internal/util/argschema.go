package util

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// argShapes maps a known tool name to a constructor for its typed argument
// shape. Tools not listed here have no typed shape; callers fall back to
// the raw backend-reported input schema.
var argShapes = map[string]func() any{
	"hwp_save":              func() any { return &hwpSaveArgs{} },
	"hwp_save_document":     func() any { return &hwpSaveArgs{} },
	"hwp_export_pdf":        func() any { return &hwpExportPDFArgs{} },
	"hwp_save_as":           func() any { return &hwpSaveAsArgs{} },
	"hwp_insert_text":       func() any { return &hwpInsertTextArgs{} },
	"hwp_windows_insert_text": func() any { return &hwpInsertTextArgs{} },
	"hwp_create_hwpx":       func() any { return &hwpInsertTextArgs{} },
	"hwp_find":              func() any { return &hwpFindArgs{} },
	"hwp_search_text":       func() any { return &hwpSearchTextArgs{} },
}

type hwpSaveArgs struct {
	Path string `json:"path"`
}

type hwpExportPDFArgs struct {
	OutputPath string `json:"output_path"`
}

type hwpSaveAsArgs struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

type hwpInsertTextArgs struct {
	Text     string `json:"text"`
	Filename string `json:"filename,omitempty"`
}

type hwpFindArgs struct {
	Text string `json:"text"`
}

type hwpSearchTextArgs struct {
	Query string `json:"query"`
}

// ArgSchemaFor renders the typed argument-shape schema for toolName, when
// one is registered. ok is false when no typed shape exists for this tool.
func ArgSchemaFor(toolName string) (schema map[string]any, ok bool) {
	ctor, found := argShapes[toolName]
	if !found {
		return nil, false
	}
	// ExpandedStruct puts the shape's properties at the top level instead
	// of behind a "$ref" into "$defs".
	r := &jsonschema.Reflector{ExpandedStruct: true}
	reflected := r.Reflect(ctor())
	b, err := json.Marshal(reflected)
	if err != nil {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, false
	}
	return m, true
}
