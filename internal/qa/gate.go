package qa

import "sort"

// gateRefRank is the fixed rank the gate compares the best score against.
// The reference score sits at position min(gateRefRank, len)-1 regardless of
// the requested k; this fixed window is intentional and matches the original
// tuning for k=5.
const gateRefRank = 5

// Admit decides, from the similarity scores of a query's top-k retrieval,
// whether the query is answerable at all. It rejects when the best score is
// below minRelevance, or when the best score is not at least minGap above
// the reference score: no clear winner means no trustworthy answer.
// minGap = 0 disables the gap check. An empty score list is rejected.
// Pure function: no side effects, no I/O.
func Admit(scores []float32, minRelevance, minGap float32) bool {
	if len(scores) == 0 {
		return false
	}

	sorted := make([]float32, len(scores))
	copy(sorted, scores)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	top1 := sorted[0]
	ref := sorted[min(gateRefRank, len(sorted))-1]

	if top1 < minRelevance {
		return false
	}
	if minGap > 0 && top1-ref < minGap {
		return false
	}
	return true
}
