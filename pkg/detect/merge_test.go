package detect

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func TestMergeCandidates(t *testing.T) {
	d := New(DefaultConfig())

	t.Run("SinglePairMultipleStrategies", func(t *testing.T) {
		candidates := []Candidate{
			{SKU1: "A", SKU2: "B", SimilarityScore: 0.6, Confidence: 0.6,
				Reason: "Fuzzy attribute matching", MatchingAttributes: map[string]bool{"brand_name": true, "price": false}},
			{SKU1: "A", SKU2: "B", SimilarityScore: 1.0, Confidence: 1.0,
				Reason: "Exact upc match: 999", MatchingAttributes: map[string]bool{"upc": true}},
		}

		merged := d.MergeCandidates(candidates)
		if len(merged) != 1 {
			t.Fatalf("Expected 1 merged record, got %d", len(merged))
		}
		m := merged[0]
		if m.SimilarityScore != 1.0 {
			t.Errorf("Expected max similarity 1.0, got %f", m.SimilarityScore)
		}
		// min(1.0 + 0.1*2, 1.0) = 1.0
		if m.Confidence != 1.0 {
			t.Errorf("Expected confidence capped at 1.0, got %f", m.Confidence)
		}
		if len(m.Reasons) != 2 {
			t.Errorf("Expected 2 distinct reasons, got %v", m.Reasons)
		}
		if !m.MatchingAttributes["brand_name"] || !m.MatchingAttributes["upc"] {
			t.Errorf("Expected union of matching attributes, got %v", m.MatchingAttributes)
		}
		if m.MatchingAttributes["price"] {
			t.Errorf("price matched in no strategy, should stay false")
		}
	})

	t.Run("ConfidenceBoost", func(t *testing.T) {
		candidates := []Candidate{
			{SKU1: "A", SKU2: "B", SimilarityScore: 0.6, Reason: "Fuzzy attribute matching"},
			{SKU1: "A", SKU2: "B", SimilarityScore: 0.55, Reason: "Similar name pattern"},
		}
		merged := d.MergeCandidates(candidates)
		// min(0.6 + 0.1*2, 1.0) = 0.8
		if math.Abs(merged[0].Confidence-0.8) > 1e-9 {
			t.Errorf("Expected confidence 0.8, got %f", merged[0].Confidence)
		}
	})

	t.Run("DuplicateReasonsCountOnce", func(t *testing.T) {
		candidates := []Candidate{
			{SKU1: "A", SKU2: "B", SimilarityScore: 0.6, Reason: "Fuzzy attribute matching"},
			{SKU1: "A", SKU2: "B", SimilarityScore: 0.6, Reason: "Fuzzy attribute matching"},
		}
		merged := d.MergeCandidates(candidates)
		if math.Abs(merged[0].Confidence-0.7) > 1e-9 {
			t.Errorf("Expected confidence 0.7 for one distinct reason, got %f", merged[0].Confidence)
		}
	})

	t.Run("MonotoneInDistinctReasons", func(t *testing.T) {
		evidence := []Candidate{
			{SKU1: "A", SKU2: "B", SimilarityScore: 0.6, Reason: "r1"},
		}
		prev := d.MergeCandidates(evidence)[0].Confidence
		for i := 2; i <= 6; i++ {
			evidence = append(evidence, Candidate{
				SKU1: "A", SKU2: "B", SimilarityScore: 0.6,
				Reason: "r" + string(rune('0'+i)),
			})
			got := d.MergeCandidates(evidence)[0].Confidence
			if got < prev {
				t.Fatalf("Confidence decreased from %f to %f with %d reasons", prev, got, i)
			}
			if got < 0 || got > 1 {
				t.Fatalf("Confidence %f outside [0,1]", got)
			}
			prev = got
		}
	})

	t.Run("ReversedPairOrderCollapses", func(t *testing.T) {
		candidates := []Candidate{
			{SKU1: "B", SKU2: "A", SimilarityScore: 0.9, Reason: "r1"},
			{SKU1: "A", SKU2: "B", SimilarityScore: 0.8, Reason: "r2"},
		}
		merged := d.MergeCandidates(candidates)
		if len(merged) != 1 {
			t.Fatalf("Reversed pairs should collapse to one record, got %d", len(merged))
		}
		if merged[0].SKU1 != "A" || merged[0].SKU2 != "B" {
			t.Errorf("Expected canonical pair (A, B), got (%s, %s)", merged[0].SKU1, merged[0].SKU2)
		}
	})

	t.Run("OrderIndependent", func(t *testing.T) {
		candidates := []Candidate{
			{SKU1: "A", SKU2: "B", SimilarityScore: 0.9, Reason: "r1"},
			{SKU1: "A", SKU2: "B", SimilarityScore: 0.6, Reason: "r2"},
			{SKU1: "C", SKU2: "D", SimilarityScore: 0.7, Reason: "r1"},
			{SKU1: "A", SKU2: "C", SimilarityScore: 0.7, Reason: "r3"},
		}

		want := d.MergeCandidates(candidates)

		rng := rand.New(rand.NewSource(42))
		for trial := 0; trial < 10; trial++ {
			shuffled := make([]Candidate, len(candidates))
			copy(shuffled, candidates)
			rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			got := d.MergeCandidates(shuffled)
			if !reflect.DeepEqual(want, got) {
				t.Fatalf("Merge result depends on input order:\nwant %+v\ngot  %+v", want, got)
			}
		}
	})

	t.Run("SortedByConfidence", func(t *testing.T) {
		candidates := []Candidate{
			{SKU1: "C", SKU2: "D", SimilarityScore: 0.6, Reason: "r1"},
			{SKU1: "A", SKU2: "B", SimilarityScore: 0.95, Reason: "r1"},
		}
		merged := d.MergeCandidates(candidates)
		if merged[0].SKU1 != "A" {
			t.Errorf("Expected highest-confidence pair first, got %+v", merged[0])
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if got := d.MergeCandidates(nil); len(got) != 0 {
			t.Errorf("Expected empty result, got %v", got)
		}
	})
}

func TestMergedCandidateReason(t *testing.T) {
	m := MergedCandidate{Reasons: []string{"Exact upc match: 999", "Fuzzy attribute matching"}}
	want := "Exact upc match: 999; Fuzzy attribute matching"
	if got := m.Reason(); got != want {
		t.Errorf("Reason() = %q, want %q", got, want)
	}
}
