package detect

import (
	"fmt"
	"sort"
)

// matchEmbeddings finds pairs whose embedding vectors exceed the cosine
// similarity threshold. SKUs are compared in sorted order so output is
// deterministic across runs. All vectors must share one dimension;
// a mismatch returns ErrDimensionMismatch before any scoring.
func (d *Detector) matchEmbeddings(embeddings map[string][]float32) ([]Candidate, error) {
	if len(embeddings) < 2 {
		return nil, nil
	}

	skus := make([]string, 0, len(embeddings))
	for sku := range embeddings {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	dim := len(embeddings[skus[0]])
	for _, sku := range skus {
		if len(embeddings[sku]) != dim {
			return nil, fmt.Errorf("vector for %q has %d dimensions, expected %d: %w",
				sku, len(embeddings[sku]), dim, ErrDimensionMismatch)
		}
	}

	var candidates []Candidate
	for i := 0; i < len(skus); i++ {
		for j := i + 1; j < len(skus); j++ {
			sim := CosineSimilarity(embeddings[skus[i]], embeddings[skus[j]])
			if sim >= d.cfg.EmbeddingThreshold {
				candidates = append(candidates, newCandidate(
					skus[i], skus[j],
					sim, sim,
					fmt.Sprintf("High embedding similarity: %.3f", sim),
					map[string]bool{"embedding": true},
				))
			}
		}
	}
	return candidates, nil
}
