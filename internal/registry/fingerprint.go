package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/hwpx-agentic/gateway/errors"
	"github.com/hwpx-agentic/gateway/internal/core"
)

// ToolDump is the raw shape a backend reports for one tool, before
// fingerprinting. InputSchema/OutputSchema arrive as arbitrary JSON-shaped
// values; convertTool coerces them to plain objects.
type ToolDump struct {
	Name         string
	Description  string
	InputSchema  any
	OutputSchema any
}

// hashPayload mirrors the canonical-JSON shape the fingerprint is computed
// over: {"name", "inputSchema", "outputSchema"} with sorted keys.
// encoding/json emits struct fields in declaration order, so a map is used
// here: its keys are always emitted sorted.
func hashPayload(name string, inputSchema, outputSchema map[string]any) string {
	payload := map[string]any{
		"name":         name,
		"inputSchema":  inputSchema,
		"outputSchema": outputSchema,
	}
	encoded, err := marshalSortedKeys(payload)
	if err != nil {
		// json.Marshal on a map[string]any built from JSON-safe values
		// cannot fail; keep a deterministic fallback rather than panic.
		encoded = []byte(name)
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])[:16]
}

// marshalSortedKeys relies on encoding/json's guarantee that map[string]any
// keys are emitted in sorted order, giving us the canonical serialization
// the fingerprint spec requires without a third-party canonical-JSON lib.
func marshalSortedKeys(v any) ([]byte, error) {
	return json.Marshal(v)
}

// detectTags returns the closed-vocabulary tag set for a tool, in emission
// order, falling back to ("generic",) when nothing matches.
func detectTags(name, description string) []string {
	lowered := strings.ToLower(name + " " + description)
	tags := make([]string, 0, 2)
	if strings.Contains(lowered, "windows") {
		tags = append(tags, "windows-only")
	}
	if containsAny(lowered, "xml", "xpath", "hwpx") {
		tags = append(tags, "xml")
	}
	if containsAny(lowered, "pdf", "html", "convert", "export") {
		tags = append(tags, "export")
	}
	if len(tags) == 0 {
		tags = append(tags, "generic")
	}
	return tags
}

func containsAny(haystack string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

// toJSONObject coerces an arbitrary backend-reported value into a plain
// JSON object, treating anything that isn't already a map as empty.
func toJSONObject(v any) map[string]any {
	obj, ok := v.(map[string]any)
	if !ok || obj == nil {
		return map[string]any{}
	}
	return obj
}

// convertTool turns one raw backend descriptor into an immutable
// ToolRecord: trims name/description, computes the schema hash and
// tool_id, classifies the group, and detects tags.
func convertTool(dump ToolDump) (core.ToolRecord, error) {
	name := strings.TrimSpace(dump.Name)
	if name == "" {
		return core.ToolRecord{}, errors.ErrMalformedToolMeta
	}
	description := strings.TrimSpace(dump.Description)
	inputSchema := toJSONObject(dump.InputSchema)

	var outputSchema map[string]any
	if obj, ok := dump.OutputSchema.(map[string]any); ok {
		outputSchema = obj
	}

	hash := hashPayload(name, inputSchema, outputSchema)
	return core.ToolRecord{
		ToolID:       name + ":" + hash,
		Name:         name,
		Description:  description,
		InputSchema:  inputSchema,
		OutputSchema: outputSchema,
		Group:        classifyGroup(name, description),
		Tags:         detectTags(name, description),
		SchemaHash:   hash,
	}, nil
}
