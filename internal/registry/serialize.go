package registry

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/hwpx-agentic/gateway/internal/core"
)

// recordLine is the JSONL wire shape for one diagnostics-dump line. The
// core does not depend on reading this back; field names only need to be
// stable enough for a human (or a one-off script) to inspect.
type recordLine struct {
	ToolID       string         `json:"tool_id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	InputSchema  map[string]any `json:"input_schema"`
	OutputSchema map[string]any `json:"output_schema,omitempty"`
	Group        core.GroupName `json:"group"`
	Tags         []string       `json:"tags"`
	SchemaHash   string         `json:"schema_hash"`
}

// DumpJSONL writes one JSON object per line, UTF-8, one per record, in the
// records' existing order. It is a diagnostics aid only; the core never
// reads this format back.
func DumpJSONL(w io.Writer, records []core.ToolRecord) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	for _, record := range records {
		line := recordLine{
			ToolID:       record.ToolID,
			Name:         record.Name,
			Description:  record.Description,
			InputSchema:  record.InputSchema,
			OutputSchema: record.OutputSchema,
			Group:        record.Group,
			Tags:         record.Tags,
			SchemaHash:   record.SchemaHash,
		}
		if err := encoder.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

// DumpJSONLToFile creates (or truncates) outputPath and writes the
// registry snapshot to it, creating parent directories as needed.
func DumpJSONLToFile(outputPath string, records []core.ToolRecord) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()
	return DumpJSONL(file, records)
}
