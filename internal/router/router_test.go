package router

import (
	"testing"

	"github.com/hwpx-agentic/gateway/internal/core"
)

// TestRouteGroup_TieBreakIsDeterministic constructs two records with
// character-for-character identical search blobs (same name, description,
// tags) but different groups, so every query produces an exact score tie
// between the two groups. Stage A must resolve that tie the same way on
// every call -- spec.md §4.7 requires the router's output to be
// reproducible for a fixed registry and query.
func TestRouteGroup_TieBreakIsDeterministic(t *testing.T) {
	records := []core.ToolRecord{
		{ToolID: "alpha:aaa", Name: "alpha widget", Group: core.GroupFieldMeta, Tags: []string{"generic"}, SchemaHash: "aaa"},
		{ToolID: "alpha:bbb", Name: "alpha widget", Group: core.GroupFindReplace, Tags: []string{"generic"}, SchemaHash: "bbb"},
	}
	r := New(records)

	for i := 0; i < 50; i++ {
		route := r.RouteGroup("alpha widget")
		if route.Group != core.GroupFieldMeta {
			t.Fatalf("iteration %d: expected a stable tie-break to %s (first in core.GroupNames order), got %s",
				i, core.GroupFieldMeta, route.Group)
		}
	}
}

func TestRouteGroup_NoCandidates(t *testing.T) {
	r := New(nil)
	route := r.RouteGroup("anything")
	if route.Group != core.GroupOther || route.Confidence != 0 {
		t.Fatalf("expected GroupOther with zero confidence, got %+v", route)
	}
}
