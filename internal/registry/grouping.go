package registry

import (
	"strings"

	"github.com/hwpx-agentic/gateway/internal/core"
)

// groupKeywords lists, in classification order, the substrings that route a
// tool into a group. "other" has no keywords: it is the fallback when
// nothing above it matches.
var groupKeywords = []struct {
	group    core.GroupName
	keywords []string
}{
	{core.GroupDocumentLifecycle, []string{"connect", "disconnect", "create", "open", "save", "close", "document"}},
	{core.GroupTextInsertion, []string{"insert_text", "font", "charshape", "parashape", "paragraph", "heading", "bold", "italic", "underline"}},
	{core.GroupTableChart, []string{"table", "cell", "chart", "picture", "image", "equation"}},
	{core.GroupFieldMeta, []string{"field", "bookmark", "metatag", "metadata", "template"}},
	{core.GroupFindReplace, []string{"find", "replace", "search"}},
	{core.GroupXMLDirect, []string{"xml", "xpath", "validate", "parse_section", "smart_patch"}},
	{core.GroupExportConvert, []string{"export", "convert", "pdf", "html"}},
	{core.GroupUtilDebug, []string{"ping", "capabilities", "platform_info", "get_document_info", "page_count"}},
}

// classifyGroup returns the first group (in the table's declared order)
// whose keyword set matches "{name} {description}" lowercased, or
// core.GroupOther when none match. The ordering defines the tie-break.
func classifyGroup(name, description string) core.GroupName {
	lowered := strings.ToLower(name + " " + description)
	for _, entry := range groupKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.group
			}
		}
	}
	return core.GroupOther
}
