package detect

import (
	"context"

	"github.com/liliang-cn/dedup/pkg/catalog"
	"github.com/liliang-cn/dedup/pkg/normalize"
)

// Detector runs the multi-strategy duplicate detection pipeline.
// Detectors are safe for concurrent use; all methods are pure functions
// over their inputs and never mutate the catalog.
type Detector struct {
	cfg    Config
	norm   *normalize.Normalizer
	logger Logger
}

// New creates a detector. Zero-valued config fields fall back to defaults.
func New(cfg Config) *Detector {
	cfg = cfg.withDefaults()
	return &Detector{
		cfg:    cfg,
		norm:   normalize.New(),
		logger: cfg.Logger,
	}
}

// Config returns the effective configuration after defaults were applied.
func (d *Detector) Config() Config {
	return d.cfg
}

// GenerateCandidates runs all four detection strategies over the catalog
// and returns their concatenated candidates. The embeddings map may be
// nil or partial; SKUs without a vector are skipped by the embedding
// strategy. Strategies run concurrently; concatenation order does not
// affect the merged result.
func (d *Detector) GenerateCandidates(ctx context.Context, products []catalog.Product, embeddings map[string][]float32) ([]Candidate, error) {
	type result struct {
		idx        int
		candidates []Candidate
		err        error
	}

	strategies := []func() ([]Candidate, error){
		func() ([]Candidate, error) { return d.matchIdentifiers(products), nil },
		func() ([]Candidate, error) { return d.matchFuzzyAttributes(products), nil },
		func() ([]Candidate, error) { return d.matchPatterns(products), nil },
		func() ([]Candidate, error) { return d.matchEmbeddings(embeddings) },
	}

	ch := make(chan result, len(strategies))
	for i, strategy := range strategies {
		go func(idx int, fn func() ([]Candidate, error)) {
			cands, err := fn()
			ch <- result{idx: idx, candidates: cands, err: err}
		}(i, strategy)
	}

	collected := make([][]Candidate, len(strategies))
	var firstErr error
	for range strategies {
		select {
		case <-ctx.Done():
			return nil, wrapError("generate_candidates", ctx.Err())
		case r := <-ch:
			collected[r.idx] = r.candidates
			if r.err != nil && firstErr == nil {
				firstErr = r.err
			}
		}
	}
	if firstErr != nil {
		return nil, wrapError("generate_candidates", firstErr)
	}

	var all []Candidate
	for _, cands := range collected {
		all = append(all, cands...)
	}

	d.logger.Debug("candidate generation complete",
		"products", len(products),
		"identifier", len(collected[0]),
		"fuzzy", len(collected[1]),
		"pattern", len(collected[2]),
		"embedding", len(collected[3]),
	)
	return all, nil
}

// Detect runs the full pipeline: generate, merge, cluster, recommend.
func (d *Detector) Detect(ctx context.Context, products []catalog.Product, embeddings map[string][]float32) (*Report, error) {
	candidates, err := d.GenerateCandidates(ctx, products, embeddings)
	if err != nil {
		return nil, err
	}

	merged := d.MergeCandidates(candidates)
	groups := d.ClusterDuplicates(merged, d.cfg.MinConfidence)

	recommendations := make([]Recommendation, 0, len(groups))
	for _, g := range groups {
		rec, err := d.RecommendMerge(g, products)
		if err != nil {
			return nil, err
		}
		recommendations = append(recommendations, rec)
	}

	d.logger.Info("detection complete",
		"products", len(products),
		"pairs", len(merged),
		"groups", len(groups),
	)

	return &Report{
		Candidates:      merged,
		Groups:          groups,
		Recommendations: recommendations,
		ProductCount:    len(products),
	}, nil
}
