// Package detect finds duplicate and near-duplicate products in a
// catalog. Four independent strategies propose candidate pairs
// (identifier match, fuzzy attributes, SKU/name patterns, embedding
// similarity); candidates are merged per pair, clustered into groups,
// and turned into merge recommendations.
package detect

import "github.com/liliang-cn/dedup/pkg/catalog"

// Candidate is one strategy's claim that two products may be duplicates.
// SKU1 is always lexicographically smaller than SKU2.
type Candidate struct {
	SKU1               string          `json:"sku1"`
	SKU2               string          `json:"sku2"`
	SimilarityScore    float64         `json:"similarityScore"`
	MatchingAttributes map[string]bool `json:"matchingAttributes,omitempty"`
	Confidence         float64         `json:"confidence"`
	Reason             string          `json:"reason"`
}

// newCandidate builds a candidate with the pair in canonical order.
func newCandidate(skuA, skuB string, score, confidence float64, reason string, attrs map[string]bool) Candidate {
	if skuB < skuA {
		skuA, skuB = skuB, skuA
	}
	return Candidate{
		SKU1:               skuA,
		SKU2:               skuB,
		SimilarityScore:    score,
		MatchingAttributes: attrs,
		Confidence:         confidence,
		Reason:             reason,
	}
}

// MergedCandidate combines all evidence about one pair of products.
type MergedCandidate struct {
	SKU1               string          `json:"sku1"`
	SKU2               string          `json:"sku2"`
	SimilarityScore    float64         `json:"similarityScore"`
	MatchingAttributes map[string]bool `json:"matchingAttributes,omitempty"`
	Confidence         float64         `json:"confidence"`
	Reasons            []string        `json:"reasons"`
}

// Group is a connected component of high-confidence duplicate pairs.
// Membership is transitive: A and C land in the same group when both
// pair with B, even if A and C were never compared directly.
type Group struct {
	ID   string   `json:"id"`
	SKUs []string `json:"skus"`
}

// Recommendation describes how to merge one duplicate group.
type Recommendation struct {
	GroupID          string            `json:"groupId"`
	PrimarySKU       string            `json:"primarySku"`
	MergedSKUs       []string          `json:"mergedSkus"`
	TotalInventory   int               `json:"totalInventory"`
	MergedAttributes map[string]string `json:"mergedAttributes"`
	MergedPrice      *float64          `json:"mergedPrice,omitempty"`
	EstimatedSavings float64           `json:"estimatedSavings"`
}

// Confidence tier labels for reporting.
const (
	TierDefinite = "definite_duplicate"
	TierLikely   = "likely_duplicate"
	TierPossible = "possible_duplicate"
	TierSimilar  = "similar_product"
)

// TierFor maps a confidence value to a reporting tier.
func TierFor(confidence float64) string {
	switch {
	case confidence >= 0.95:
		return TierDefinite
	case confidence >= 0.90:
		return TierLikely
	case confidence >= 0.85:
		return TierPossible
	default:
		return TierSimilar
	}
}

// Report is the result of a full detection pass over a catalog.
type Report struct {
	Candidates      []MergedCandidate `json:"candidates"`
	Groups          []Group           `json:"groups"`
	Recommendations []Recommendation  `json:"recommendations"`
	ProductCount    int               `json:"productCount"`
}

// productIndex maps SKUs to products for fast group lookups.
type productIndex map[string]*catalog.Product

func indexProducts(products []catalog.Product) productIndex {
	idx := make(productIndex, len(products))
	for i := range products {
		idx[products[i].SKU] = &products[i]
	}
	return idx
}
