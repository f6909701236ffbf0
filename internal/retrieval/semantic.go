package retrieval

import "github.com/hwpx-agentic/gateway/internal/core"

// SemanticRetriever stands in for a true embedding-based retriever: token-
// set Jaccard overlap between the query and each record's search blob. It
// honors the same Search(query, groups, topK) shape as LexicalRetriever,
// so a real vector scorer is a drop-in replacement.
type SemanticRetriever struct {
	records []core.ToolRecord
}

func NewSemanticRetriever(records []core.ToolRecord) *SemanticRetriever {
	return &SemanticRetriever{records: records}
}

func (r *SemanticRetriever) Search(query string, groups map[core.GroupName]struct{}, topK int) []core.ToolScore {
	if topK <= 0 {
		return nil
	}
	queryTokens := tokenSet(tokenize(query))

	results := make([]core.ToolScore, 0, len(r.records))
	for _, record := range r.records {
		if len(groups) > 0 {
			if _, ok := groups[record.Group]; !ok {
				continue
			}
		}
		recordTokens := tokenSet(tokenize(record.SearchBlob()))
		if len(recordTokens) == 0 {
			continue
		}
		intersection := 0
		for tok := range queryTokens {
			if _, ok := recordTokens[tok]; ok {
				intersection++
			}
		}
		union := len(queryTokens) + len(recordTokens) - intersection
		if union <= 0 {
			union = 1
		}
		score := float64(intersection) / float64(union)
		if score > 0 {
			results = append(results, core.ToolScore{ToolID: record.ToolID, Score: score, Reason: "semantic"})
		}
	}

	sortScores(results)
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
