package detect

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/liliang-cn/dedup/pkg/catalog"
)

var (
	// Suffixes stripped from SKUs to find variant families, e.g.
	// PROD-001-BLK and PROD-001-RED share the base PROD-001.
	skuSizeSuffix  = regexp.MustCompile(`(?i)[-_](S|M|L|XL|XXL|[0-9]+)$`)
	skuColorSuffix = regexp.MustCompile(`(?i)[-_](BLACK|WHITE|RED|BLUE|GREEN)$`)

	// Tokens stripped from product names before grouping
	genderWords = regexp.MustCompile(`\b(mens?|womens?|kids?|boys?|girls?)\b`)
	sizeWords   = regexp.MustCompile(`\b(small|medium|large|[xs]?[xls])\b`)
	weightTerms = regexp.MustCompile(`\b\d+(\.\d+)?\s*(oz|ml|lb|kg|g)\b`)
)

// matchPatterns runs two grouping heuristics: SKU base-pattern grouping
// and cleaned-name grouping. Each emits all pairs within a group with a
// fixed confidence.
func (d *Detector) matchPatterns(products []catalog.Product) []Candidate {
	candidates := d.matchSKUPatterns(products)
	candidates = append(candidates, d.matchNamePatterns(products)...)
	return candidates
}

// matchSKUPatterns groups SKUs by their base after stripping size and
// color suffixes.
func (d *Detector) matchSKUPatterns(products []catalog.Product) []Candidate {
	groups := make(map[string][]string)
	for i := range products {
		sku := products[i].SKU
		base := skuSizeSuffix.ReplaceAllString(sku, "")
		base = skuColorSuffix.ReplaceAllString(base, "")
		groups[base] = append(groups[base], sku)
	}

	var candidates []Candidate
	for _, base := range sortedKeys(groups) {
		skus := groups[base]
		if len(skus) < 2 {
			continue
		}
		for i := 0; i < len(skus); i++ {
			for j := i + 1; j < len(skus); j++ {
				candidates = append(candidates, newCandidate(
					skus[i], skus[j],
					d.cfg.SKUPatternConfidence, d.cfg.SKUPatternConfidence,
					fmt.Sprintf("Similar SKU pattern: %s", base),
					map[string]bool{"sku_pattern": true},
				))
			}
		}
	}
	return candidates
}

// matchNamePatterns groups products whose names are identical after
// removing gender, size and weight/volume tokens.
func (d *Detector) matchNamePatterns(products []catalog.Product) []Candidate {
	groups := make(map[string][]string)
	for i := range products {
		clean := cleanProductName(products[i].ProductName)
		if clean == "" {
			continue
		}
		groups[clean] = append(groups[clean], products[i].SKU)
	}

	var candidates []Candidate
	for _, clean := range sortedKeys(groups) {
		skus := groups[clean]
		if len(skus) < 2 {
			continue
		}
		for i := 0; i < len(skus); i++ {
			for j := i + 1; j < len(skus); j++ {
				candidates = append(candidates, newCandidate(
					skus[i], skus[j],
					d.cfg.NamePatternConfidence, d.cfg.NamePatternConfidence,
					"Similar name pattern",
					map[string]bool{"name_pattern": true},
				))
			}
		}
	}
	return candidates
}

// cleanProductName lower-cases the name and strips variant tokens so
// that "Mens Running Shoe Large" and "Womens Running Shoe Small" group
// together.
func cleanProductName(name string) string {
	clean := strings.ToLower(name)
	clean = genderWords.ReplaceAllString(clean, "")
	clean = sizeWords.ReplaceAllString(clean, "")
	clean = weightTerms.ReplaceAllString(clean, "")
	return strings.Join(strings.Fields(clean), " ")
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
