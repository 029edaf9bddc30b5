package detect

// Config represents configuration options for duplicate detection.
// A zero value means "use the default", so callers can override a
// single knob without rebuilding the whole struct. The flip side is
// that zero itself is not a configurable value: to effectively disable
// a threshold or the savings estimate, pass a small positive value
// (e.g. SavingsPerDuplicate: 0.001) instead of 0.
type Config struct {
	// AttributeWeights maps attribute names to their contribution to
	// the fuzzy similarity score.
	AttributeWeights map[string]float64 `json:"attributeWeights,omitempty"`

	// FuzzyMinScore is the minimum weighted score for a fuzzy candidate
	// to be emitted.
	FuzzyMinScore float64 `json:"fuzzyMinScore,omitempty"`

	// NameSimilarityThreshold is the Jaccard similarity above which the
	// name bonus applies.
	NameSimilarityThreshold float64 `json:"nameSimilarityThreshold,omitempty"`

	// NameSimilarityBonus is the flat bonus added when names are similar.
	NameSimilarityBonus float64 `json:"nameSimilarityBonus,omitempty"`

	// EmbeddingThreshold is the minimum cosine similarity for an
	// embedding candidate.
	EmbeddingThreshold float64 `json:"embeddingThreshold,omitempty"`

	// SKUPatternConfidence is the confidence assigned to SKU-pattern matches.
	SKUPatternConfidence float64 `json:"skuPatternConfidence,omitempty"`

	// NamePatternConfidence is the confidence assigned to cleaned-name matches.
	NamePatternConfidence float64 `json:"namePatternConfidence,omitempty"`

	// ReasonBoost is the confidence boost per distinct detection reason
	// when merging candidates for the same pair.
	ReasonBoost float64 `json:"reasonBoost,omitempty"`

	// MinConfidence is the default clustering threshold.
	MinConfidence float64 `json:"minConfidence,omitempty"`

	// PriceTolerance is the relative price difference treated as a match.
	PriceTolerance float64 `json:"priceTolerance,omitempty"`

	// SavingsPerDuplicate is the estimated saving for each merged-away
	// record, in the catalog's currency.
	SavingsPerDuplicate float64 `json:"savingsPerDuplicate,omitempty"`

	// Logger receives progress and diagnostics. Defaults to a no-op logger.
	Logger Logger `json:"-"`
}

// DefaultAttributeWeights returns the standard per-attribute weights
// for fuzzy matching. Identifiers weigh most, cosmetic attributes least.
func DefaultAttributeWeights() map[string]float64 {
	return map[string]float64{
		"brand_name":   0.25,
		"model_number": 0.20,
		"upc":          0.30,
		"ean":          0.30,
		"size":         0.15,
		"color":        0.10,
		"material":     0.05,
		"price":        0.05,
	}
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		AttributeWeights:        DefaultAttributeWeights(),
		FuzzyMinScore:           0.5,
		NameSimilarityThreshold: 0.8,
		NameSimilarityBonus:     0.2,
		EmbeddingThreshold:      0.85,
		SKUPatternConfidence:    0.85,
		NamePatternConfidence:   0.80,
		ReasonBoost:             0.1,
		MinConfidence:           0.85,
		PriceTolerance:          0.10,
		SavingsPerDuplicate:     50,
		Logger:                  NopLogger(),
	}
}

// withDefaults fills in zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.AttributeWeights == nil {
		c.AttributeWeights = def.AttributeWeights
	}
	if c.FuzzyMinScore == 0 {
		c.FuzzyMinScore = def.FuzzyMinScore
	}
	if c.NameSimilarityThreshold == 0 {
		c.NameSimilarityThreshold = def.NameSimilarityThreshold
	}
	if c.NameSimilarityBonus == 0 {
		c.NameSimilarityBonus = def.NameSimilarityBonus
	}
	if c.EmbeddingThreshold == 0 {
		c.EmbeddingThreshold = def.EmbeddingThreshold
	}
	if c.SKUPatternConfidence == 0 {
		c.SKUPatternConfidence = def.SKUPatternConfidence
	}
	if c.NamePatternConfidence == 0 {
		c.NamePatternConfidence = def.NamePatternConfidence
	}
	if c.ReasonBoost == 0 {
		c.ReasonBoost = def.ReasonBoost
	}
	if c.MinConfidence == 0 {
		c.MinConfidence = def.MinConfidence
	}
	if c.PriceTolerance == 0 {
		c.PriceTolerance = def.PriceTolerance
	}
	if c.SavingsPerDuplicate == 0 {
		c.SavingsPerDuplicate = def.SavingsPerDuplicate
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
	return c
}
