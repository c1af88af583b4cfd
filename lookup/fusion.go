package lookup

import "sort"

// fusedCandidate is one catalog record after reciprocal rank fusion.
type fusedCandidate struct {
	ID    string
	Score float64
}

// fuseRRF combines independently ranked id lists with Reciprocal Rank Fusion:
// each ranking contributes 1/(k + rank) per candidate, rank starting at 1.
// Scores are then normalized so a candidate ranked first by every ranking
// scores exactly 1.0, which keeps the configured score threshold meaningful
// regardless of k and of how many rankings contribute.
//
// RRF is deliberately insensitive to the absolute score scales of the
// underlying rankings; only relative rank matters, which is what makes fusing
// embedding similarities with term-frequency scores sound.
func fuseRRF(k int, rankings ...[]string) []fusedCandidate {
	if k <= 0 {
		k = 60
	}

	scores := make(map[string]float64)
	for _, ranking := range rankings {
		for rank, id := range ranking {
			scores[id] += 1.0 / float64(k+rank+1)
		}
	}
	if len(scores) == 0 {
		return nil
	}

	// Best possible: first place in every contributing ranking.
	norm := float64(len(rankings)) / float64(k+1)

	results := make([]fusedCandidate, 0, len(scores))
	for id, score := range scores {
		results = append(results, fusedCandidate{ID: id, Score: score / norm})
	}

	// Descending score; id breaks ties so repeated calls stay deterministic.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	return results
}
