package detect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/liliang-cn/dedup/pkg/catalog"
)

// RecommendMerge synthesizes a merge plan for one duplicate group: the
// most complete member becomes primary, attributes are consolidated
// across the group, and inventory is summed. Returns ErrUnknownSKU when
// a group member is missing from the catalog slice.
func (d *Detector) RecommendMerge(group Group, products []catalog.Product) (Recommendation, error) {
	if len(group.SKUs) == 0 {
		return Recommendation{}, wrapError("recommend_merge", ErrEmptyGroup)
	}

	idx := indexProducts(products)

	members := make([]*catalog.Product, 0, len(group.SKUs))
	for _, sku := range group.SKUs {
		p, ok := idx[sku]
		if !ok {
			return Recommendation{}, wrapError("recommend_merge",
				fmt.Errorf("group %s references %q: %w", group.ID, sku, ErrUnknownSKU))
		}
		members = append(members, p)
	}

	primary := selectPrimary(members)

	totalInventory := 0
	for _, m := range members {
		totalInventory += m.Inventory()
	}

	merged := mergeAttributes(primary, members)

	var mergedPrice *float64
	if primary.Price != nil {
		sum, count := 0.0, 0
		for _, m := range members {
			if m.Price != nil {
				sum += *m.Price
				count++
			}
		}
		if count > 0 {
			mean := sum / float64(count)
			mergedPrice = &mean
		}
	}

	mergedSKUs := make([]string, len(group.SKUs))
	copy(mergedSKUs, group.SKUs)
	sort.Strings(mergedSKUs)

	return Recommendation{
		GroupID:          group.ID,
		PrimarySKU:       primary.SKU,
		MergedSKUs:       mergedSKUs,
		TotalInventory:   totalInventory,
		MergedAttributes: merged,
		MergedPrice:      mergedPrice,
		EstimatedSavings: float64(len(members)-1) * d.cfg.SavingsPerDuplicate,
	}, nil
}

// selectPrimary picks the member with the highest completeness score,
// breaking ties by smallest SKU.
func selectPrimary(members []*catalog.Product) *catalog.Product {
	primary := members[0]
	best := primary.CompletenessScore()
	for _, m := range members[1:] {
		score := m.CompletenessScore()
		if score > best || (score == best && m.SKU < primary.SKU) {
			primary = m
			best = score
		}
	}
	return primary
}

// mergeAttributes consolidates the text fields present on the primary
// record: the most common non-empty value across the group wins, ties
// prefer the primary's own value, then the smallest value.
func mergeAttributes(primary *catalog.Product, members []*catalog.Product) map[string]string {
	merged := make(map[string]string)

	for field := range primary.StringFields() {
		counts := make(map[string]int)
		for _, m := range members {
			if v, ok := m.StringFields()[field]; ok {
				counts[strings.TrimSpace(v)]++
			}
		}
		if len(counts) == 0 {
			continue
		}

		primaryValue := strings.TrimSpace(primary.StringFields()[field])
		best := ""
		bestCount := 0
		for value, count := range counts {
			switch {
			case count > bestCount:
				best, bestCount = value, count
			case count == bestCount && value == primaryValue:
				best = value
			case count == bestCount && best != primaryValue && value < best:
				best = value
			}
		}
		merged[field] = best
	}

	return merged
}
