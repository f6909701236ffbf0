// Package core holds the data model shared by the registry, retrieval,
// router and gateway layers: the fingerprinted tool catalog and the score
// types produced while searching it.
package core

import "strings"

// GroupName is one of the nine functional groups a tool can be classified
// into. It is a plain string type rather than an int enum so that it
// round-trips through JSON and RPC wire formats without a lookup table.
type GroupName string

const (
	GroupDocumentLifecycle GroupName = "document_lifecycle"
	GroupTextInsertion     GroupName = "text_insertion"
	GroupTableChart        GroupName = "table_chart"
	GroupFieldMeta         GroupName = "field_meta"
	GroupFindReplace       GroupName = "find_replace"
	GroupXMLDirect         GroupName = "xml_direct"
	GroupExportConvert     GroupName = "export_convert"
	GroupUtilDebug         GroupName = "util_debug"
	GroupOther             GroupName = "other"
)

// GroupNames lists every valid group in classification order. Used by the
// gateway to validate a caller-supplied group string.
var GroupNames = []GroupName{
	GroupDocumentLifecycle,
	GroupTextInsertion,
	GroupTableChart,
	GroupFieldMeta,
	GroupFindReplace,
	GroupXMLDirect,
	GroupExportConvert,
	GroupUtilDebug,
	GroupOther,
}

// IsValidGroup reports whether g is one of GroupNames.
func IsValidGroup(g GroupName) bool {
	for _, candidate := range GroupNames {
		if candidate == g {
			return true
		}
	}
	return false
}

// ToolRecord is an immutable, fingerprinted description of one backend
// tool. A registry snapshot is a sorted, read-only slice of ToolRecord;
// nothing in this package mutates a ToolRecord after construction.
type ToolRecord struct {
	ToolID       string
	Name         string
	Description  string
	InputSchema  map[string]any
	OutputSchema map[string]any // nil when the backend reported none
	Group        GroupName
	Tags         []string
	SchemaHash   string
}

// SearchBlob is the text retrievers tokenize: "{name} {description} {tags}".
func (r ToolRecord) SearchBlob() string {
	return strings.TrimSpace(r.Name + " " + r.Description + " " + strings.Join(r.Tags, " "))
}

// GroupRoute is the router's per-query decision: which group the query
// belongs to, why, and how confident the router is. Not persisted.
type GroupRoute struct {
	Group      GroupName
	Reason     string
	Confidence float64
}

// ToolScore is one retriever's opinion of one tool's relevance to a query.
type ToolScore struct {
	ToolID string
	Score  float64
	Reason string // "lexical" | "semantic" | "hybrid"
}
