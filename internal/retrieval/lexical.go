package retrieval

import (
	"math"
	"sort"

	"github.com/hwpx-agentic/gateway/internal/core"
)

// LexicalRetriever is a BM25 scorer over each record's search blob, built
// once per registry snapshot and reused across queries.
type LexicalRetriever struct {
	k1 float64
	b  float64

	records   []core.ToolRecord
	termFreqs []map[string]int
	docLens   []int
	avgDocLen float64
	idf       map[string]float64
}

// NewLexicalRetriever indexes records for BM25 search with the spec's
// fixed constants (k1=1.5, b=0.75).
func NewLexicalRetriever(records []core.ToolRecord) *LexicalRetriever {
	r := &LexicalRetriever{k1: 1.5, b: 0.75, records: records}

	termFreqs := make([]map[string]int, len(records))
	docLens := make([]int, len(records))
	docFreq := make(map[string]int)

	totalLen := 0
	for i, record := range records {
		tokens := tokenize(record.SearchBlob())
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		termFreqs[i] = tf
		docLens[i] = len(tokens)
		totalLen += len(tokens)
		for tok := range tf {
			docFreq[tok]++
		}
	}
	r.termFreqs = termFreqs
	r.docLens = docLens
	if len(docLens) > 0 {
		r.avgDocLen = float64(totalLen) / float64(len(docLens))
	} else {
		r.avgDocLen = 1.0
	}

	totalDocs := len(records)
	if totalDocs < 1 {
		totalDocs = 1
	}
	idf := make(map[string]float64, len(docFreq))
	for term, df := range docFreq {
		idf[term] = math.Log(1.0 + (float64(totalDocs)-float64(df)+0.5)/(float64(df)+0.5))
	}
	r.idf = idf
	return r
}

// Search scores every eligible record against the query's de-duplicated
// term set, filters to score > 0, and returns the top_k sorted by
// descending score with ascending tool_id as a tie-break.
func (r *LexicalRetriever) Search(query string, groups map[core.GroupName]struct{}, topK int) []core.ToolScore {
	if topK <= 0 {
		return nil
	}
	queryTerms := tokenSet(tokenize(query))

	scores := make([]core.ToolScore, 0, len(r.records))
	for i, record := range r.records {
		if len(groups) > 0 {
			if _, ok := groups[record.Group]; !ok {
				continue
			}
		}
		tf := r.termFreqs[i]
		docLen := 0
		if len(r.docLens) > 0 {
			docLen = r.docLens[i]
		}

		score := 0.0
		for term := range queryTerms {
			termFreq := tf[term]
			if termFreq <= 0 {
				continue
			}
			idf := r.idf[term]
			denominator := float64(termFreq) + r.k1*(1.0-r.b+r.b*(float64(docLen)/r.avgDocLen))
			score += idf * (float64(termFreq) * (r.k1 + 1.0) / denominator)
		}
		if score > 0 {
			scores = append(scores, core.ToolScore{ToolID: record.ToolID, Score: score, Reason: "lexical"})
		}
	}

	sortScores(scores)
	if len(scores) > topK {
		scores = scores[:topK]
	}
	return scores
}

// sortScores sorts descending by score, ascending by tool_id on ties.
func sortScores(scores []core.ToolScore) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].ToolID < scores[j].ToolID
	})
}
