// Package normalize canonicalizes noisy product attributes so that
// equivalent values compare equal despite surface variation (brand
// suffixes, size units, color synonyms, price jitter).
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Normalizer holds the mapping tables used to canonicalize product
// attributes. All matching methods degrade to "no match" on malformed
// input; they never return errors.
type Normalizer struct {
	brandVariations map[string][]string
	sizeAliases     map[string][]string
	colorAliases    map[string][]string
	unitConversions map[[2]string]float64
}

// DefaultBrandVariations maps a canonical brand to its known spelling
// and suffix variations.
func DefaultBrandVariations() map[string][]string {
	return map[string][]string{
		"nike":    {"nike", "nike inc", "nike incorporated"},
		"adidas":  {"adidas", "adidas ag", "adidas originals"},
		"apple":   {"apple", "apple inc", "apple incorporated"},
		"samsung": {"samsung", "samsung electronics", "samsung group"},
		"sony":    {"sony", "sony corporation", "sony corp"},
	}
}

// DefaultSizeAliases maps a canonical size token to its textual variants.
func DefaultSizeAliases() map[string][]string {
	return map[string][]string{
		"small":    {"s", "sm", "small"},
		"medium":   {"m", "med", "medium"},
		"large":    {"l", "lg", "large"},
		"x-large":  {"xl", "x-large", "extra large"},
		"xx-large": {"xxl", "xx-large", "extra extra large"},
	}
}

// DefaultColorAliases maps a primary color name to synonyms,
// translations and common abbreviations.
func DefaultColorAliases() map[string][]string {
	return map[string][]string{
		"black": {"blk", "black", "negro", "noir"},
		"white": {"wht", "white", "blanco", "blanc"},
		"red":   {"red", "rojo", "rouge"},
		"blue":  {"blu", "blue", "azul", "bleu"},
		"green": {"grn", "green", "verde", "vert"},
	}
}

// DefaultUnitConversions maps an ordered (from, to) unit pair to its
// multiplication factor.
func DefaultUnitConversions() map[[2]string]float64 {
	return map[[2]string]float64{
		{"oz", "ml"}: 29.5735,
		{"ml", "oz"}: 0.033814,
		{"lb", "kg"}: 0.453592,
		{"kg", "lb"}: 2.20462,
		{"in", "cm"}: 2.54,
		{"cm", "in"}: 0.393701,
	}
}

// New creates a Normalizer with the default mapping tables.
func New() *Normalizer {
	return &Normalizer{
		brandVariations: DefaultBrandVariations(),
		sizeAliases:     DefaultSizeAliases(),
		colorAliases:    DefaultColorAliases(),
		unitConversions: DefaultUnitConversions(),
	}
}

// sizeTolerance is the absolute tolerance for magnitude comparison after
// unit alignment.
const sizeTolerance = 0.1

// numericSize matches a numeric magnitude with an optional trailing unit,
// e.g. "16 oz", "473ml", "10.5".
var numericSize = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([a-zA-Z]*)`)

// NormalizeBrand lower-cases and trims a brand string.
func (n *Normalizer) NormalizeBrand(brand string) string {
	return strings.ToLower(strings.TrimSpace(brand))
}

// BrandsMatch reports whether two brand strings refer to the same brand:
// equal after normalization, both members of one known variation set, or
// one a substring of the other ("Sony" vs "Sony Corporation").
func (n *Normalizer) BrandsMatch(brand1, brand2 string) bool {
	b1 := n.NormalizeBrand(brand1)
	b2 := n.NormalizeBrand(brand2)
	if b1 == "" || b2 == "" {
		return false
	}
	if b1 == b2 {
		return true
	}

	for _, variations := range n.brandVariations {
		if containsString(variations, b1) && containsString(variations, b2) {
			return true
		}
	}

	return strings.Contains(b1, b2) || strings.Contains(b2, b1)
}

// NormalizeSize maps size words to their canonical token and renders
// numeric sizes as "<magnitude> <unit>". Unparseable input is returned
// lower-cased and trimmed.
func (n *Normalizer) NormalizeSize(size string) string {
	s := strings.ToLower(strings.TrimSpace(size))
	if s == "" {
		return s
	}

	for canonical, aliases := range n.sizeAliases {
		if containsString(aliases, s) {
			return canonical
		}
	}

	if m := numericSize.FindStringSubmatch(s); m != nil {
		if m[2] == "" {
			return m[1]
		}
		return m[1] + " " + m[2]
	}

	return s
}

// SizesMatch reports whether two sizes are equivalent: canonical strings
// equal, or both parse as (magnitude, unit) and the magnitudes agree
// within tolerance after aligning units via the conversion table.
func (n *Normalizer) SizesMatch(size1, size2 string) bool {
	if strings.TrimSpace(size1) == "" || strings.TrimSpace(size2) == "" {
		return false
	}
	if n.NormalizeSize(size1) == n.NormalizeSize(size2) {
		return true
	}

	val1, unit1, ok1 := parseMagnitude(size1)
	val2, unit2, ok2 := parseMagnitude(size2)
	if !ok1 || !ok2 {
		return false
	}

	if unit1 == unit2 {
		return abs(val1-val2) < sizeTolerance
	}
	if factor, ok := n.unitConversions[[2]string{unit1, unit2}]; ok {
		return abs(val1*factor-val2) < sizeTolerance
	}
	return false
}

// NormalizeColor maps color synonyms to a primary color name. Multi-word
// phrases are normalized token by token; unmapped tokens pass through
// lower-cased.
func (n *Normalizer) NormalizeColor(color string) string {
	c := strings.ToLower(strings.TrimSpace(color))
	if c == "" {
		return c
	}

	for canonical, aliases := range n.colorAliases {
		if containsString(aliases, c) {
			return canonical
		}
	}

	parts := strings.Fields(c)
	if len(parts) <= 1 {
		return c
	}

	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		mapped := part
		for canonical, aliases := range n.colorAliases {
			if containsString(aliases, part) {
				mapped = canonical
				break
			}
		}
		normalized = append(normalized, mapped)
	}
	return strings.Join(normalized, " ")
}

// ColorsMatch reports whether two colors normalize to the same value.
func (n *Normalizer) ColorsMatch(color1, color2 string) bool {
	c1 := n.NormalizeColor(color1)
	c2 := n.NormalizeColor(color2)
	return c1 != "" && c1 == c2
}

// PriceWithinTolerance reports whether two prices differ by at most the
// given relative tolerance. Non-positive prices never match.
func PriceWithinTolerance(p1, p2, tolerance float64) bool {
	if p1 <= 0 || p2 <= 0 {
		return false
	}
	maxPrice := p1
	if p2 > maxPrice {
		maxPrice = p2
	}
	return abs(p1-p2)/maxPrice <= tolerance
}

// NameSimilarity computes Jaccard word-overlap similarity between two
// product names. Returns 0 when either name has no words.
func NameSimilarity(name1, name2 string) float64 {
	words1 := wordSet(name1)
	words2 := wordSet(name2)
	if len(words1) == 0 || len(words2) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range words1 {
		if _, ok := words2[w]; ok {
			intersection++
		}
	}
	union := len(words1) + len(words2) - intersection

	return float64(intersection) / float64(union)
}

// parseMagnitude extracts the (magnitude, unit) pair from a size string.
func parseMagnitude(size string) (float64, string, bool) {
	m := numericSize.FindStringSubmatch(strings.TrimSpace(size))
	if m == nil {
		return 0, "", false
	}
	val, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	return val, strings.ToLower(m[2]), true
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
