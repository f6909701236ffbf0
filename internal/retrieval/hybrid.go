package retrieval

import "github.com/hwpx-agentic/gateway/internal/core"

const (
	defaultLexicalWeight  = 0.65
	defaultSemanticWeight = 0.35
)

// HybridRetriever fuses max-normalized lexical and semantic scores into a
// single ranking. A document missing from one side still qualifies via the
// other side's normalized contribution.
type HybridRetriever struct {
	lexical  *LexicalRetriever
	semantic *SemanticRetriever

	lexicalWeight  float64
	semanticWeight float64
}

// NewHybridRetriever builds both sub-retrievers from records and uses the
// spec's default weights (0.65 lexical / 0.35 semantic).
func NewHybridRetriever(records []core.ToolRecord) *HybridRetriever {
	return &HybridRetriever{
		lexical:        NewLexicalRetriever(records),
		semantic:       NewSemanticRetriever(records),
		lexicalWeight:  defaultLexicalWeight,
		semanticWeight: defaultSemanticWeight,
	}
}

// WithWeights overrides the default fusion weights; callers owning the
// returned pointer may tune the lexical/semantic balance.
func (h *HybridRetriever) WithWeights(lexical, semantic float64) *HybridRetriever {
	h.lexicalWeight = lexical
	h.semanticWeight = semantic
	return h
}

func (h *HybridRetriever) Search(query string, groups map[core.GroupName]struct{}, topK int) []core.ToolScore {
	pool := topK * 3
	if pool < topK {
		pool = topK
	}

	lexicalScores := h.lexical.Search(query, groups, pool)
	semanticScores := h.semantic.Search(query, groups, pool)

	lexicalNorm := normalize(lexicalScores)
	semanticNorm := normalize(semanticScores)

	fused := make(map[string]float64)
	for _, s := range lexicalScores {
		fused[s.ToolID] += h.lexicalWeight * lexicalNorm[s.ToolID]
	}
	for _, s := range semanticScores {
		fused[s.ToolID] += h.semanticWeight * semanticNorm[s.ToolID]
	}

	merged := make([]core.ToolScore, 0, len(fused))
	for toolID, score := range fused {
		merged = append(merged, core.ToolScore{ToolID: toolID, Score: score, Reason: "hybrid"})
	}

	sortScores(merged)
	if len(merged) > topK {
		merged = merged[:topK]
	}
	return merged
}

// normalize divides every score by the list's max; an empty or
// non-positive max yields all-zero normalized scores.
func normalize(scores []core.ToolScore) map[string]float64 {
	max := 0.0
	for _, s := range scores {
		if s.Score > max {
			max = s.Score
		}
	}
	norm := make(map[string]float64, len(scores))
	for _, s := range scores {
		if max <= 0 {
			norm[s.ToolID] = 0
			continue
		}
		norm[s.ToolID] = s.Score / max
	}
	return norm
}
