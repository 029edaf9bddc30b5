// Package dedup finds duplicate and near-duplicate products in an
// e-commerce catalog. It combines exact identifier matching, fuzzy
// attribute matching, SKU/name pattern heuristics and embedding
// similarity, merges the evidence per product pair, clusters
// high-confidence pairs into duplicate groups, and proposes a merge
// plan for each group.
//
// The Engine ties together a SQLite-backed catalog store, the
// detection pipeline and an optional embedding backend:
//
//	engine, err := dedup.Open(dedup.DefaultConfig("catalog.db"))
//	if err != nil { ... }
//	defer engine.Close()
//
//	err = engine.ImportProducts(ctx, products)
//	report, err := engine.Scan(ctx, 0.85)
package dedup

import (
	"context"
	"fmt"

	"github.com/liliang-cn/dedup/pkg/catalog"
	"github.com/liliang-cn/dedup/pkg/detect"
	"github.com/liliang-cn/dedup/pkg/embed"
)

// Config represents engine configuration.
type Config struct {
	Path     string        // Database file path
	Detector detect.Config // Detection thresholds and weights
}

// DefaultConfig returns default configuration for the given database path.
func DefaultConfig(path string) Config {
	return Config{
		Path:     path,
		Detector: detect.DefaultConfig(),
	}
}

// Engine is the top-level handle combining storage and detection.
type Engine struct {
	store    *catalog.Store
	detector *detect.Detector
	embedder embed.Embedder // optional
	preparer *embed.TextPreparer
	template embed.Template
}

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithEmbedder configures the engine with an embedding backend. When
// set, EmbedCatalog can generate vectors and Scan includes the
// embedding similarity strategy.
func WithEmbedder(e embed.Embedder) Option {
	return func(eng *Engine) {
		eng.embedder = e
	}
}

// WithTemplate selects the text template used for embedding generation.
func WithTemplate(t embed.Template) Option {
	return func(eng *Engine) {
		eng.template = t
	}
}

// Open opens or creates the catalog database and prepares the engine.
func Open(config Config, opts ...Option) (*Engine, error) {
	store, err := catalog.NewStore(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	if err := store.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	engine := &Engine{
		store:    store,
		detector: detect.New(config.Detector),
		preparer: embed.NewTextPreparer(),
		template: embed.TemplateFullProduct,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// Store returns the underlying catalog store.
func (e *Engine) Store() *catalog.Store {
	return e.store
}

// Detector returns the underlying detector.
func (e *Engine) Detector() *detect.Detector {
	return e.detector
}

// ImportProducts inserts or updates catalog products.
func (e *Engine) ImportProducts(ctx context.Context, products []*catalog.Product) error {
	return e.store.UpsertProducts(ctx, products)
}

// EmbedCatalog generates and stores embedding vectors for every product
// in the given category (empty for the whole catalog). Products whose
// template text renders empty are skipped. Returns the number of
// vectors stored.
func (e *Engine) EmbedCatalog(ctx context.Context, category string) (int, error) {
	if e.embedder == nil {
		return 0, embed.ErrEmbedderNotConfigured
	}

	products, err := e.store.ListProducts(ctx, category)
	if err != nil {
		return 0, err
	}

	var skus []string
	var texts []string
	for i := range products {
		text := e.preparer.Prepare(&products[i], e.template)
		if text == "" {
			continue
		}
		skus = append(skus, products[i].SKU)
		texts = append(texts, text)
	}
	if len(texts) == 0 {
		return 0, nil
	}

	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, err
	}

	for i, sku := range skus {
		if err := e.store.UpsertEmbedding(ctx, sku, vectors[i]); err != nil {
			return i, err
		}
	}
	return len(skus), nil
}

// SetEmbedding stores a precomputed vector for a SKU, for callers that
// generate embeddings externally.
func (e *Engine) SetEmbedding(ctx context.Context, sku string, vector []float32) error {
	return e.store.UpsertEmbedding(ctx, sku, vector)
}

// Scan runs the full detection pipeline over the stored catalog (and
// any stored embeddings). minConfidence <= 0 uses the configured
// default clustering threshold.
func (e *Engine) Scan(ctx context.Context, minConfidence float64) (*detect.Report, error) {
	return e.ScanCategory(ctx, "", minConfidence)
}

// ScanCategory runs detection over one category slice. Pre-partitioning
// by category keeps the O(n^2) fuzzy strategy tractable on large
// catalogs.
func (e *Engine) ScanCategory(ctx context.Context, category string, minConfidence float64) (*detect.Report, error) {
	products, err := e.store.ListProducts(ctx, category)
	if err != nil {
		return nil, err
	}

	embeddings, err := e.store.Embeddings(ctx)
	if err != nil {
		return nil, err
	}
	if category != "" {
		// Keep only vectors for products in this slice
		inSlice := make(map[string]bool, len(products))
		for i := range products {
			inSlice[products[i].SKU] = true
		}
		for sku := range embeddings {
			if !inSlice[sku] {
				delete(embeddings, sku)
			}
		}
	}

	candidates, err := e.detector.GenerateCandidates(ctx, products, embeddings)
	if err != nil {
		return nil, err
	}
	merged := e.detector.MergeCandidates(candidates)
	groups := e.detector.ClusterDuplicates(merged, minConfidence)

	recommendations := make([]detect.Recommendation, 0, len(groups))
	for _, g := range groups {
		rec, err := e.detector.RecommendMerge(g, products)
		if err != nil {
			return nil, err
		}
		recommendations = append(recommendations, rec)
	}

	return &detect.Report{
		Candidates:      merged,
		Groups:          groups,
		Recommendations: recommendations,
		ProductCount:    len(products),
	}, nil
}

// Stats returns row counts for the stored catalog.
func (e *Engine) Stats(ctx context.Context) (catalog.StoreStats, error) {
	return e.store.Stats(ctx)
}

// Close closes the engine and its store.
func (e *Engine) Close() error {
	return e.store.Close()
}
