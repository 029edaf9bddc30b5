package detect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/liliang-cn/dedup/pkg/catalog"
)

// matchIdentifiers finds products sharing an external identifier (UPC,
// EAN, ISBN, ASIN, model number). A shared identifier is treated as
// conclusive: score and confidence are both 1.0.
func (d *Detector) matchIdentifiers(products []catalog.Product) []Candidate {
	var candidates []Candidate

	for _, col := range catalog.IdentifierColumns {
		groups := make(map[string][]string)
		for i := range products {
			value := strings.TrimSpace(products[i].Identifier(col))
			if value == "" {
				continue
			}
			groups[value] = append(groups[value], products[i].SKU)
		}

		// Deterministic output order across runs
		values := make([]string, 0, len(groups))
		for v := range groups {
			values = append(values, v)
		}
		sort.Strings(values)

		for _, value := range values {
			skus := groups[value]
			if len(skus) < 2 {
				continue
			}
			for i := 0; i < len(skus); i++ {
				for j := i + 1; j < len(skus); j++ {
					candidates = append(candidates, newCandidate(
						skus[i], skus[j],
						1.0, 1.0,
						fmt.Sprintf("Exact %s match: %s", col, value),
						map[string]bool{col: true},
					))
				}
			}
		}
	}

	return candidates
}
