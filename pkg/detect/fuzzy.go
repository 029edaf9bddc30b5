package detect

import (
	"math"
	"strings"

	"github.com/liliang-cn/dedup/pkg/catalog"
	"github.com/liliang-cn/dedup/pkg/normalize"
)

// matchFuzzyAttributes scores every product pair by weighted attribute
// agreement. O(n^2) over the slice; callers should pre-partition large
// catalogs (for example by category) before invoking the detector.
func (d *Detector) matchFuzzyAttributes(products []catalog.Product) []Candidate {
	var candidates []Candidate

	for i := 0; i < len(products); i++ {
		for j := i + 1; j < len(products); j++ {
			score, matches := d.scorePair(&products[i], &products[j])
			if score >= d.cfg.FuzzyMinScore {
				candidates = append(candidates, newCandidate(
					products[i].SKU, products[j].SKU,
					score, score,
					"Fuzzy attribute matching",
					matches,
				))
			}
		}
	}

	return candidates
}

// scorePair computes the weighted attribute score for one pair. Only
// attributes present in both records contribute; their match result is
// recorded in the returned map either way.
func (d *Detector) scorePair(p1, p2 *catalog.Product) (float64, map[string]bool) {
	matches := make(map[string]bool)
	score := 0.0

	addMatch := func(attr string, matched bool) {
		matches[attr] = matched
		if matched {
			score += d.cfg.AttributeWeights[attr]
		}
	}

	if present(p1.BrandName) && present(p2.BrandName) {
		addMatch("brand_name", d.norm.BrandsMatch(p1.BrandName, p2.BrandName))
	}
	if present(p1.ModelNumber) && present(p2.ModelNumber) {
		addMatch("model_number", textEqual(p1.ModelNumber, p2.ModelNumber))
	}
	if present(p1.UPC) && present(p2.UPC) {
		addMatch("upc", textEqual(p1.UPC, p2.UPC))
	}
	if present(p1.EAN) && present(p2.EAN) {
		addMatch("ean", textEqual(p1.EAN, p2.EAN))
	}
	if present(p1.Size) && present(p2.Size) {
		addMatch("size", d.norm.SizesMatch(p1.Size, p2.Size))
	}
	if present(p1.Color) && present(p2.Color) {
		addMatch("color", d.norm.ColorsMatch(p1.Color, p2.Color))
	}
	if present(p1.Material) && present(p2.Material) {
		addMatch("material", textEqual(p1.Material, p2.Material))
	}
	if p1.Price != nil && p2.Price != nil {
		addMatch("price", normalize.PriceWithinTolerance(*p1.Price, *p2.Price, d.cfg.PriceTolerance))
	}

	// Similar names corroborate the attribute evidence
	if present(p1.ProductName) && present(p2.ProductName) {
		if normalize.NameSimilarity(p1.ProductName, p2.ProductName) > d.cfg.NameSimilarityThreshold {
			score += d.cfg.NameSimilarityBonus
		}
	}

	// The weight table sums past 1.0, so a pair matching on enough
	// attributes would otherwise leave the 0-1 score range
	return math.Min(score, 1.0), matches
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

func textEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
