// Package router implements the two-stage hierarchical router: aggregate
// hybrid-retrieval scores by group to pick a group and a confidence, then
// re-rank within that group.
package router

import (
	"fmt"

	"github.com/hwpx-agentic/gateway/internal/core"
	"github.com/hwpx-agentic/gateway/internal/retrieval"
)

// HierarchicalRouter wraps a HybridRetriever built from one registry
// snapshot. It is pure data plus pure functions: rebuilding it is cheap,
// and the gateway rebuilds one on every registry refresh.
type HierarchicalRouter struct {
	records    []core.ToolRecord
	recordByID map[string]core.ToolRecord
	retriever  *retrieval.HybridRetriever

	groupTopK int
	toolTopK  int
}

// New builds a router over records with the spec's default top-k values.
func New(records []core.ToolRecord) *HierarchicalRouter {
	byID := make(map[string]core.ToolRecord, len(records))
	for _, r := range records {
		byID[r.ToolID] = r
	}
	return &HierarchicalRouter{
		records:    records,
		recordByID: byID,
		retriever:  retrieval.NewHybridRetriever(records),
		groupTopK:  1,
		toolTopK:   8,
	}
}

// RouteGroup runs an unfiltered hybrid search, aggregates scores by group,
// and returns the group with the largest accumulated score along with a
// confidence in (0,1]. Returns GroupOther with confidence 0 when there are
// no candidates at all.
func (r *HierarchicalRouter) RouteGroup(query string) core.GroupRoute {
	limit := r.toolTopK
	if limit < 12 {
		limit = 12
	}
	candidates := r.retriever.Search(query, nil, limit)
	if len(candidates) == 0 {
		return core.GroupRoute{Group: core.GroupOther, Reason: "no matching tools", Confidence: 0}
	}

	scoreByGroup := make(map[core.GroupName]float64)
	for _, candidate := range candidates {
		record, ok := r.recordByID[candidate.ToolID]
		if !ok {
			continue
		}
		scoreByGroup[record.Group] += candidate.Score
	}
	if len(scoreByGroup) == 0 {
		return core.GroupRoute{Group: core.GroupOther, Reason: "empty score map", Confidence: 0}
	}

	var selected core.GroupName
	best := -1.0
	total := 0.0
	for _, score := range scoreByGroup {
		total += score
	}
	// Iterate the fixed group order (not the map) so an exact score tie
	// always resolves to the same group, preserving §4.7's determinism
	// guarantee across runs.
	for _, group := range core.GroupNames {
		score, ok := scoreByGroup[group]
		if !ok {
			continue
		}
		if score > best {
			best = score
			selected = group
		}
	}
	confidence := best / total
	if total == 0 {
		confidence = best
	}
	return core.GroupRoute{
		Group:      selected,
		Reason:     formatGroupReason(len(candidates)),
		Confidence: confidence,
	}
}

// SelectTools runs a hybrid search constrained to one group: group, when
// non-empty, is used directly; otherwise RouteGroup picks it first.
func (r *HierarchicalRouter) SelectTools(query string, group core.GroupName, topK int) []core.ToolScore {
	selectedGroup := group
	if selectedGroup == "" {
		selectedGroup = r.RouteGroup(query).Group
	}
	limit := topK
	if limit == 0 {
		limit = r.toolTopK
	}
	filter := map[core.GroupName]struct{}{selectedGroup: {}}
	return r.retriever.Search(query, filter, limit)
}

func formatGroupReason(candidateCount int) string {
	return fmt.Sprintf("top aggregated score from %d candidates", candidateCount)
}
