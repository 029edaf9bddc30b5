package detect

import (
	"math"
	"sort"
	"strings"
)

// MergeCandidates collapses the concatenated strategy output into one
// record per unordered pair. The reduction is deterministic: the same
// multiset of candidates yields the same merged set regardless of
// input order.
func (d *Detector) MergeCandidates(candidates []Candidate) []MergedCandidate {
	type pairKey struct {
		sku1, sku2 string
	}

	pairs := make(map[pairKey][]Candidate)
	for _, c := range candidates {
		k := pairKey{c.SKU1, c.SKU2}
		if c.SKU2 < c.SKU1 {
			k = pairKey{c.SKU2, c.SKU1}
		}
		pairs[k] = append(pairs[k], c)
	}

	merged := make([]MergedCandidate, 0, len(pairs))
	for k, group := range pairs {
		maxSimilarity := 0.0
		attrs := make(map[string]bool)
		reasonSet := make(map[string]bool)
		var reasons []string

		for _, c := range group {
			if c.SimilarityScore > maxSimilarity {
				maxSimilarity = c.SimilarityScore
			}
			// Logical OR: any strategy seeing a match is informative
			for attr, matched := range c.MatchingAttributes {
				attrs[attr] = attrs[attr] || matched
			}
			if !reasonSet[c.Reason] {
				reasonSet[c.Reason] = true
				reasons = append(reasons, c.Reason)
			}
		}
		sort.Strings(reasons)

		confidence := math.Min(maxSimilarity+d.cfg.ReasonBoost*float64(len(reasons)), 1.0)

		merged = append(merged, MergedCandidate{
			SKU1:               k.sku1,
			SKU2:               k.sku2,
			SimilarityScore:    maxSimilarity,
			MatchingAttributes: attrs,
			Confidence:         confidence,
			Reasons:            reasons,
		})
	}

	// Descending confidence, pair key as a stable tie-break
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Confidence != merged[j].Confidence {
			return merged[i].Confidence > merged[j].Confidence
		}
		if merged[i].SKU1 != merged[j].SKU1 {
			return merged[i].SKU1 < merged[j].SKU1
		}
		return merged[i].SKU2 < merged[j].SKU2
	})

	return merged
}

// Reason joins the merged record's reasons for display.
func (m *MergedCandidate) Reason() string {
	return strings.Join(m.Reasons, "; ")
}
