package embed

import (
	"regexp"
	"strings"

	"github.com/liliang-cn/dedup/pkg/catalog"
	"github.com/liliang-cn/dedup/pkg/normalize"
)

// Template selects which product fields feed the embedding text and in
// what order. Different templates emphasize different aspects of the
// product, so vectors built from the same template stay comparable.
type Template string

const (
	// TemplateFullProduct covers brand, name, category and attributes.
	TemplateFullProduct Template = "full_product"
	// TemplateTitleFocused emphasizes brand and product name.
	TemplateTitleFocused Template = "title_focused"
	// TemplateAttributeFocused covers size, color and material only.
	TemplateAttributeFocused Template = "attribute_focused"
)

// abbreviations common in e-commerce catalog text
var abbreviations = map[string]string{
	"sz":   "size",
	"lg":   "large",
	"sm":   "small",
	"med":  "medium",
	"xl":   "extra large",
	"xxl":  "extra extra large",
	"blk":  "black",
	"wht":  "white",
	"pcs":  "pieces",
	"qty":  "quantity",
	"desc": "description",
	"mfr":  "manufacturer",
	"orig": "original",
}

var specialChars = regexp.MustCompile(`[^a-z0-9\s.-]`)

// TextPreparer renders products into embedding input text.
type TextPreparer struct {
	norm *normalize.Normalizer
}

// NewTextPreparer creates a preparer with the default normalization tables.
func NewTextPreparer() *TextPreparer {
	return &TextPreparer{norm: normalize.New()}
}

// Prepare renders one product through the given template. Unknown
// templates fall back to TemplateFullProduct. Absent fields are skipped;
// the result is "" when every selected field is absent.
func (t *TextPreparer) Prepare(p *catalog.Product, template Template) string {
	var parts []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	switch template {
	case TemplateTitleFocused:
		add(t.cleanField(p.BrandName))
		add(t.cleanField(p.ProductName))
		add(t.norm.NormalizeColor(p.Color))
		add(t.norm.NormalizeSize(p.Size))
	case TemplateAttributeFocused:
		add(t.norm.NormalizeSize(p.Size))
		add(t.norm.NormalizeColor(p.Color))
		add(t.cleanField(p.Material))
	default:
		add(t.cleanField(p.BrandName))
		add(t.cleanField(p.ProductName))
		add(t.cleanField(p.Category))
		add(t.norm.NormalizeColor(p.Color))
		add(t.norm.NormalizeSize(p.Size))
		add(t.cleanField(p.Material))
	}

	return strings.Join(parts, " ")
}

// cleanField lower-cases, strips special characters and expands
// abbreviations.
func (t *TextPreparer) cleanField(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	clean := strings.ToLower(value)
	clean = specialChars.ReplaceAllString(clean, " ")
	return ExpandAbbreviations(clean)
}

// ExpandAbbreviations replaces known e-commerce abbreviations with
// their full words, token by token.
func ExpandAbbreviations(text string) string {
	words := strings.Fields(text)
	expanded := make([]string, 0, len(words))
	for _, w := range words {
		if full, ok := abbreviations[strings.ToLower(w)]; ok {
			expanded = append(expanded, full)
		} else {
			expanded = append(expanded, w)
		}
	}
	return strings.Join(expanded, " ")
}
