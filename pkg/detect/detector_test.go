package detect

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/liliang-cn/dedup/pkg/catalog"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestMatchIdentifiers(t *testing.T) {
	d := New(DefaultConfig())

	t.Run("SharedUPC", func(t *testing.T) {
		products := []catalog.Product{
			{SKU: "A1", UPC: "012345678905", Price: floatPtr(50)},
			{SKU: "A2", UPC: "012345678905", Price: floatPtr(500)}, // price ignored
			{SKU: "B1", UPC: "999999999999"},
		}

		candidates := d.matchIdentifiers(products)
		if len(candidates) != 1 {
			t.Fatalf("Expected 1 candidate, got %d", len(candidates))
		}
		c := candidates[0]
		if c.SKU1 != "A1" || c.SKU2 != "A2" {
			t.Errorf("Expected pair (A1, A2), got (%s, %s)", c.SKU1, c.SKU2)
		}
		if c.Confidence != 1.0 || c.SimilarityScore != 1.0 {
			t.Errorf("Identifier match should be conclusive, got conf=%f sim=%f", c.Confidence, c.SimilarityScore)
		}
		if c.Reason != "Exact upc match: 012345678905" {
			t.Errorf("Unexpected reason: %q", c.Reason)
		}
		if !c.MatchingAttributes["upc"] {
			t.Errorf("Expected upc recorded as matching")
		}
	})

	t.Run("MultipleColumns", func(t *testing.T) {
		products := []catalog.Product{
			{SKU: "X1", EAN: "4006381333931", ModelNumber: "MN-1"},
			{SKU: "X2", EAN: "4006381333931", ModelNumber: "MN-1"},
		}
		candidates := d.matchIdentifiers(products)
		// Same pair surfaces once per matching column
		if len(candidates) != 2 {
			t.Fatalf("Expected 2 candidates (ean + model_number), got %d", len(candidates))
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		products := []catalog.Product{
			{SKU: "P1", UPC: "111"}, {SKU: "P2", UPC: "111"},
			{SKU: "P3", UPC: "222"}, {SKU: "P4", UPC: "222"},
		}
		first := d.matchIdentifiers(products)
		second := d.matchIdentifiers(products)
		if len(first) != len(second) {
			t.Fatalf("Candidate count changed between runs")
		}
		for i := range first {
			if first[i].SKU1 != second[i].SKU1 || first[i].SKU2 != second[i].SKU2 {
				t.Errorf("Run order differs at %d: %v vs %v", i, first[i], second[i])
			}
		}
	})
}

func TestMatchFuzzyAttributes(t *testing.T) {
	t.Run("WeightedScore", func(t *testing.T) {
		d := New(DefaultConfig())
		products := []catalog.Product{
			{SKU: "F1", BrandName: "Nike", UPC: "123", Price: floatPtr(50)},
			{SKU: "F2", BrandName: "Nike Inc", UPC: "123", Price: floatPtr(52)},
		}
		candidates := d.matchFuzzyAttributes(products)
		if len(candidates) != 1 {
			t.Fatalf("Expected 1 candidate, got %d", len(candidates))
		}
		// brand 0.25 + upc 0.30 + price 0.05 = 0.60
		c := candidates[0]
		if c.SimilarityScore < 0.59 || c.SimilarityScore > 0.61 {
			t.Errorf("Expected score near 0.60, got %f", c.SimilarityScore)
		}
		if c.Reason != "Fuzzy attribute matching" {
			t.Errorf("Unexpected reason: %q", c.Reason)
		}
		if !c.MatchingAttributes["brand_name"] || !c.MatchingAttributes["upc"] || !c.MatchingAttributes["price"] {
			t.Errorf("Expected brand, upc and price matches: %v", c.MatchingAttributes)
		}
	})

	t.Run("ThresholdBoundary", func(t *testing.T) {
		// Exact-weight configs keep the boundary free of float error
		products := []catalog.Product{
			{SKU: "T1", BrandName: "Nike"},
			{SKU: "T2", BrandName: "Nike"},
		}

		atThreshold := New(Config{AttributeWeights: map[string]float64{"brand_name": 0.5}})
		if got := atThreshold.matchFuzzyAttributes(products); len(got) != 1 {
			t.Errorf("Score exactly at threshold should be emitted, got %d candidates", len(got))
		}

		belowThreshold := New(Config{AttributeWeights: map[string]float64{"brand_name": 0.499}})
		if got := belowThreshold.matchFuzzyAttributes(products); len(got) != 0 {
			t.Errorf("Score below threshold should not be emitted, got %d candidates", len(got))
		}
	})

	t.Run("NameBonus", func(t *testing.T) {
		d := New(DefaultConfig())
		products := []catalog.Product{
			{SKU: "N1", BrandName: "Nike", ProductName: "Air Max 90 Running Shoe"},
			{SKU: "N2", BrandName: "Nike", ProductName: "Air Max 90 Running Shoe"},
		}
		// brand 0.25 + name bonus 0.2 = 0.45, below 0.5
		if got := d.matchFuzzyAttributes(products); len(got) != 0 {
			t.Errorf("0.45 should be below threshold, got %d candidates", len(got))
		}

		products[0].Size = "10"
		products[1].Size = "10"
		// + size 0.15 = 0.60
		got := d.matchFuzzyAttributes(products)
		if len(got) != 1 {
			t.Fatalf("Expected 1 candidate with size match, got %d", len(got))
		}
	})

	t.Run("ScoreCappedAtOne", func(t *testing.T) {
		d := New(DefaultConfig())
		// upc 0.30 + ean 0.30 + brand 0.25 + size 0.15 + color 0.10
		// accumulates to 1.10 and must clamp
		products := []catalog.Product{
			{SKU: "C1", UPC: "123", EAN: "456", BrandName: "Nike", Size: "M", Color: "black"},
			{SKU: "C2", UPC: "123", EAN: "456", BrandName: "Nike", Size: "M", Color: "black"},
		}
		candidates := d.matchFuzzyAttributes(products)
		if len(candidates) != 1 {
			t.Fatalf("Expected 1 candidate, got %d", len(candidates))
		}
		c := candidates[0]
		if c.SimilarityScore != 1.0 || c.Confidence != 1.0 {
			t.Errorf("Expected scores clamped to 1.0, got sim=%f conf=%f", c.SimilarityScore, c.Confidence)
		}

		merged := d.MergeCandidates(candidates)
		if merged[0].SimilarityScore > 1.0 || merged[0].Confidence > 1.0 {
			t.Errorf("Merged scores left [0,1]: sim=%f conf=%f",
				merged[0].SimilarityScore, merged[0].Confidence)
		}
	})

	t.Run("AbsentAttributesDoNotCount", func(t *testing.T) {
		d := New(DefaultConfig())
		products := []catalog.Product{
			{SKU: "E1"},
			{SKU: "E2"},
		}
		if got := d.matchFuzzyAttributes(products); len(got) != 0 {
			t.Errorf("Empty records should not match, got %d candidates", len(got))
		}
	})
}

func TestMatchPatterns(t *testing.T) {
	d := New(DefaultConfig())

	t.Run("SKUSuffixes", func(t *testing.T) {
		products := []catalog.Product{
			{SKU: "PROD-001-BLACK"},
			{SKU: "PROD-001-RED"},
			{SKU: "PROD-002-BLACK"},
		}
		candidates := d.matchSKUPatterns(products)
		if len(candidates) != 1 {
			t.Fatalf("Expected 1 candidate, got %d", len(candidates))
		}
		c := candidates[0]
		if c.SKU1 != "PROD-001-BLACK" || c.SKU2 != "PROD-001-RED" {
			t.Errorf("Unexpected pair: (%s, %s)", c.SKU1, c.SKU2)
		}
		if c.Confidence != 0.85 {
			t.Errorf("Expected confidence 0.85, got %f", c.Confidence)
		}
		if c.Reason != "Similar SKU pattern: PROD-001" {
			t.Errorf("Unexpected reason: %q", c.Reason)
		}
	})

	t.Run("SKUSizeAndColorSuffix", func(t *testing.T) {
		// Both suffixes strip in sequence: SHIRT-A_XL and SHIRT-A-BLACK
		// share the base SHIRT-A
		products := []catalog.Product{
			{SKU: "SHIRT-A_XL"},
			{SKU: "SHIRT-A-BLACK"},
		}
		candidates := d.matchSKUPatterns(products)
		if len(candidates) != 1 {
			t.Fatalf("Expected 1 candidate, got %d", len(candidates))
		}
	})

	t.Run("NameVariants", func(t *testing.T) {
		products := []catalog.Product{
			{SKU: "M1", ProductName: "Mens Running Shoe Large"},
			{SKU: "M2", ProductName: "Womens Running Shoe Small"},
			{SKU: "M3", ProductName: "Hiking Boot"},
		}
		candidates := d.matchNamePatterns(products)
		if len(candidates) != 1 {
			t.Fatalf("Expected 1 candidate, got %d", len(candidates))
		}
		c := candidates[0]
		if c.SKU1 != "M1" || c.SKU2 != "M2" {
			t.Errorf("Unexpected pair: (%s, %s)", c.SKU1, c.SKU2)
		}
		if c.Confidence != 0.80 {
			t.Errorf("Expected confidence 0.80, got %f", c.Confidence)
		}
	})

	t.Run("WeightTokensStripped", func(t *testing.T) {
		products := []catalog.Product{
			{SKU: "W1", ProductName: "Protein Powder 16 oz"},
			{SKU: "W2", ProductName: "Protein Powder 32 oz"},
		}
		if got := d.matchNamePatterns(products); len(got) != 1 {
			t.Errorf("Expected weight tokens stripped, got %d candidates", len(got))
		}
	})

	t.Run("EmptyNamesSkipped", func(t *testing.T) {
		products := []catalog.Product{
			{SKU: "X1"}, {SKU: "X2"},
		}
		if got := d.matchNamePatterns(products); len(got) != 0 {
			t.Errorf("Empty names must not group, got %d candidates", len(got))
		}
	})
}

func TestMatchEmbeddings(t *testing.T) {
	d := New(DefaultConfig())

	t.Run("AboveThreshold", func(t *testing.T) {
		embeddings := map[string][]float32{
			"A": {1, 0, 0},
			"B": {1, 0.01, 0},
			"C": {0, 1, 0},
		}
		candidates, err := d.matchEmbeddings(embeddings)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(candidates) != 1 {
			t.Fatalf("Expected 1 candidate, got %d", len(candidates))
		}
		c := candidates[0]
		if c.SKU1 != "A" || c.SKU2 != "B" {
			t.Errorf("Unexpected pair: (%s, %s)", c.SKU1, c.SKU2)
		}
		if c.SimilarityScore < 0.99 {
			t.Errorf("Expected near-identical similarity, got %f", c.SimilarityScore)
		}
		if !strings.HasPrefix(c.Reason, "High embedding similarity") {
			t.Errorf("Unexpected reason: %q", c.Reason)
		}
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		embeddings := map[string][]float32{
			"A": {1, 0, 0},
			"B": {1, 0},
		}
		_, err := d.matchEmbeddings(embeddings)
		if !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("Expected ErrDimensionMismatch, got %v", err)
		}
	})

	t.Run("TooFewVectors", func(t *testing.T) {
		candidates, err := d.matchEmbeddings(map[string][]float32{"A": {1, 2}})
		if err != nil || len(candidates) != 0 {
			t.Errorf("Single vector should yield nothing, got %v / %v", candidates, err)
		}
		candidates, err = d.matchEmbeddings(nil)
		if err != nil || len(candidates) != 0 {
			t.Errorf("Nil map should yield nothing, got %v / %v", candidates, err)
		}
	})
}

func TestGenerateCandidatesPropagatesError(t *testing.T) {
	d := New(DefaultConfig())
	products := []catalog.Product{{SKU: "A"}, {SKU: "B"}}
	embeddings := map[string][]float32{
		"A": {1, 0},
		"B": {1, 0, 0},
	}
	_, err := d.GenerateCandidates(context.Background(), products, embeddings)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("Expected ErrDimensionMismatch, got %v", err)
	}
}

func TestDetectEndToEnd(t *testing.T) {
	d := New(DefaultConfig())
	products := []catalog.Product{
		{SKU: "A1", UPC: "999", BrandName: "Nike", Price: floatPtr(50), InventoryCount: intPtr(3)},
		{SKU: "A2", UPC: "999", BrandName: "Nike Inc", Price: floatPtr(52), InventoryCount: intPtr(4)},
		{SKU: "B1", BrandName: "Adidas", Price: floatPtr(80)},
	}

	report, err := d.Detect(context.Background(), products, nil)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if report.ProductCount != 3 {
		t.Errorf("Expected product count 3, got %d", report.ProductCount)
	}
	if len(report.Candidates) != 1 {
		t.Fatalf("Expected 1 merged candidate, got %d", len(report.Candidates))
	}
	pair := report.Candidates[0]
	if pair.SKU1 != "A1" || pair.SKU2 != "A2" {
		t.Errorf("Unexpected pair: (%s, %s)", pair.SKU1, pair.SKU2)
	}
	if pair.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %f", pair.Confidence)
	}

	if len(report.Groups) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(report.Groups))
	}
	g := report.Groups[0]
	if len(g.SKUs) != 2 || g.SKUs[0] != "A1" || g.SKUs[1] != "A2" {
		t.Errorf("Expected group {A1, A2}, got %v", g.SKUs)
	}
	for _, sku := range g.SKUs {
		if sku == "B1" {
			t.Errorf("B1 must not appear in any group")
		}
	}

	if len(report.Recommendations) != 1 {
		t.Fatalf("Expected 1 recommendation, got %d", len(report.Recommendations))
	}
	rec := report.Recommendations[0]
	if rec.PrimarySKU != "A1" {
		t.Errorf("Expected primary A1 (completeness tie, smallest SKU), got %s", rec.PrimarySKU)
	}
	if rec.TotalInventory != 7 {
		t.Errorf("Expected total inventory 7, got %d", rec.TotalInventory)
	}
	if rec.MergedPrice == nil || *rec.MergedPrice != 51 {
		t.Errorf("Expected merged price 51, got %v", rec.MergedPrice)
	}
	if rec.EstimatedSavings != 50 {
		t.Errorf("Expected savings 50, got %f", rec.EstimatedSavings)
	}
}

func TestTierFor(t *testing.T) {
	cases := []struct {
		confidence float64
		want       string
	}{
		{1.0, TierDefinite},
		{0.95, TierDefinite},
		{0.92, TierLikely},
		{0.85, TierPossible},
		{0.80, TierSimilar},
		{0.50, TierSimilar},
	}
	for _, c := range cases {
		if got := TierFor(c.confidence); got != c.want {
			t.Errorf("TierFor(%v) = %q, want %q", c.confidence, got, c.want)
		}
	}
}
