package agent

// normalizeArguments applies the per-tool argument rules of §4.10.1:
// anything not declared for a tool is dropped, and missing required
// fields yield an empty map rather than a partial one. Tools with no
// specific rule fall through to the default: only JSON primitives pass,
// everything else is dropped.
func normalizeArguments(toolName string, raw map[string]any) map[string]any {
	switch toolName {
	case "hwp_save", "hwp_save_document":
		return keepStringFields(raw, "path")
	case "hwp_export_pdf":
		return keepStringFields(raw, "output_path")
	case "hwp_save_as":
		out := keepStringFields(raw, "path", "format")
		if _, ok := out["format"]; !ok {
			out["format"] = "pdf"
		}
		return out
	case "hwp_insert_text", "hwp_windows_insert_text", "hwp_create_hwpx":
		return requireTextWithFilename(raw)
	case "hwp_find":
		return keepStringFields(raw, "text")
	case "hwp_search_text":
		return keepStringFields(raw, "query")
	default:
		return keepPrimitives(raw)
	}
}

// keepStringFields returns a map containing only the named string-typed
// fields of raw, if present. A field whose required counterpart is a
// string but missing is simply omitted, following the "else {}" rule.
func keepStringFields(raw map[string]any, fields ...string) map[string]any {
	out := map[string]any{}
	for _, f := range fields {
		if v, ok := raw[f]; ok {
			if s, ok := v.(string); ok {
				out[f] = s
			}
		}
	}
	return out
}

// requireTextWithFilename enforces text:str as required; without it the
// tool call has no valid arguments. filename is passed through when set.
func requireTextWithFilename(raw map[string]any) map[string]any {
	text, ok := raw["text"].(string)
	if !ok || text == "" {
		return map[string]any{}
	}
	out := map[string]any{"text": text}
	if filename, ok := raw["filename"].(string); ok && filename != "" {
		out["filename"] = filename
	}
	return out
}

// keepPrimitives drops any value that isn't a JSON primitive (string,
// number, bool, or nil), per the default rule for tools with no specific
// shape.
func keepPrimitives(raw map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range raw {
		switch v.(type) {
		case string, float64, int, int64, bool, nil:
			out[k] = v
		}
	}
	return out
}
