// Package catalog defines the typed product record and a SQLite-backed
// store for catalog rows and their embedding vectors.
package catalog

import "strings"

// IdentifierColumns lists the external identifier fields, in the order
// they are scanned by the identifier-match strategy.
var IdentifierColumns = []string{"upc", "ean", "isbn", "asin", "model_number"}

// Product is one catalog item. SKU is required; every other field is
// optional ("" or nil means absent). Products are immutable inputs to the
// detection pipeline; nothing in this module mutates them.
type Product struct {
	SKU            string   `json:"sku"`
	BrandName      string   `json:"brand_name,omitempty"`
	ProductName    string   `json:"product_name,omitempty"`
	Category       string   `json:"category,omitempty"`
	Color          string   `json:"color,omitempty"`
	Size           string   `json:"size,omitempty"`
	Material       string   `json:"material,omitempty"`
	UPC            string   `json:"upc,omitempty"`
	EAN            string   `json:"ean,omitempty"`
	ISBN           string   `json:"isbn,omitempty"`
	ASIN           string   `json:"asin,omitempty"`
	ModelNumber    string   `json:"model_number,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	InventoryCount *int     `json:"inventory_count,omitempty"`
}

// Identifier returns the value of the named identifier column, or ""
// when absent.
func (p *Product) Identifier(column string) string {
	switch column {
	case "upc":
		return p.UPC
	case "ean":
		return p.EAN
	case "isbn":
		return p.ISBN
	case "asin":
		return p.ASIN
	case "model_number":
		return p.ModelNumber
	}
	return ""
}

// StringFields returns the non-empty text fields of the product, keyed
// by their canonical column names. SKU, price and inventory are not
// included.
func (p *Product) StringFields() map[string]string {
	fields := map[string]string{
		"brand_name":   p.BrandName,
		"product_name": p.ProductName,
		"category":     p.Category,
		"color":        p.Color,
		"size":         p.Size,
		"material":     p.Material,
		"upc":          p.UPC,
		"ean":          p.EAN,
		"isbn":         p.ISBN,
		"asin":         p.ASIN,
		"model_number": p.ModelNumber,
	}
	for k, v := range fields {
		if strings.TrimSpace(v) == "" {
			delete(fields, k)
		}
	}
	return fields
}

// CompletenessScore counts the fields carrying a usable value. Used to
// pick the primary record of a duplicate group.
func (p *Product) CompletenessScore() int {
	score := 0
	if strings.TrimSpace(p.SKU) != "" {
		score++
	}
	score += len(p.StringFields())
	if p.Price != nil {
		score++
	}
	if p.InventoryCount != nil {
		score++
	}
	return score
}

// Inventory returns the inventory count, treating absent as 0.
func (p *Product) Inventory() int {
	if p.InventoryCount == nil {
		return 0
	}
	return *p.InventoryCount
}
