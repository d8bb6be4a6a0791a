package store

import "math"

// cosine similarity between two vectors. Mismatched or zero vectors score 0.
func cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// maximalMarginalRelevance selects up to k candidates balancing relevance to
// the query against dissimilarity to already-selected chunks. lambda=1 is pure
// relevance, lambda=0 pure diversity. Candidates must carry embeddings and
// query-relevance scores.
func maximalMarginalRelevance(candidates []ScoredChunk, k int, lambda float32) []ScoredChunk {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	selected := make([]ScoredChunk, 0, k)
	remaining := make([]ScoredChunk, len(candidates))
	copy(remaining, candidates)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestScore := float32(math.Inf(-1))
		for i, cand := range remaining {
			maxSim := float32(0)
			for _, sel := range selected {
				if sim := cosine(cand.Chunk.Embedding, sel.Chunk.Embedding); sim > maxSim {
					maxSim = sim
				}
			}
			score := lambda*cand.Score - (1-lambda)*maxSim
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}
