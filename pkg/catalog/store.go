package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/liliang-cn/dedup/internal/encoding"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store persists catalog products and their embedding vectors in SQLite.
type Store struct {
	db     *sql.DB
	path   string
	mu     sync.RWMutex
	closed bool
}

// NewStore creates a store for the given database path. Call Init before
// any other operation.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, wrapError("init", fmt.Errorf("database path cannot be empty"))
	}
	return &Store{path: path}, nil
}

// Init opens the SQLite database and creates the tables.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return wrapError("init", ErrStoreClosed)
	}

	// _journal_mode=WAL: better concurrency
	// _busy_timeout=5000: wait up to 5s for a lock instead of failing
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", s.path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return wrapError("init", fmt.Errorf("failed to open database: %w", err))
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(2 * time.Hour)

	s.db = db

	if _, err := s.db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return wrapError("init", fmt.Errorf("failed to enable foreign keys: %w", err))
	}

	if err := s.createTables(ctx); err != nil {
		return wrapError("init", err)
	}

	return nil
}

// createTables creates the products and embeddings tables
func (s *Store) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		sku TEXT PRIMARY KEY,
		brand_name TEXT,
		product_name TEXT,
		category TEXT,
		color TEXT,
		size TEXT,
		material TEXT,
		upc TEXT,
		ean TEXT,
		isbn TEXT,
		asin TEXT,
		model_number TEXT,
		price REAL,
		inventory_count INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS product_embeddings (
		sku TEXT PRIMARY KEY,
		vector BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (sku) REFERENCES products(sku) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
	CREATE INDEX IF NOT EXISTS idx_products_upc ON products(upc);
	CREATE INDEX IF NOT EXISTS idx_products_ean ON products(ean);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// UpsertProduct inserts or updates a single product.
func (s *Store) UpsertProduct(ctx context.Context, p *Product) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return wrapError("upsert_product", ErrStoreClosed)
	}
	if p == nil || strings.TrimSpace(p.SKU) == "" {
		return wrapError("upsert_product", ErrMissingSKU)
	}

	query := `
	INSERT OR REPLACE INTO products
		(sku, brand_name, product_name, category, color, size, material,
		 upc, ean, isbn, asin, model_number, price, inventory_count, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	_, err := s.db.ExecContext(ctx, query,
		p.SKU,
		nullString(p.BrandName), nullString(p.ProductName), nullString(p.Category),
		nullString(p.Color), nullString(p.Size), nullString(p.Material),
		nullString(p.UPC), nullString(p.EAN), nullString(p.ISBN),
		nullString(p.ASIN), nullString(p.ModelNumber),
		nullFloat(p.Price), nullInt(p.InventoryCount),
	)
	if err != nil {
		return wrapError("upsert_product", fmt.Errorf("failed to insert product: %w", err))
	}
	return nil
}

// UpsertProducts inserts or updates multiple products in a transaction.
func (s *Store) UpsertProducts(ctx context.Context, products []*Product) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return wrapError("upsert_products", ErrStoreClosed)
	}
	if len(products) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapError("upsert_products", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO products
			(sku, brand_name, product_name, category, color, size, material,
			 upc, ean, isbn, asin, model_number, price, inventory_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return wrapError("upsert_products", fmt.Errorf("failed to prepare statement: %w", err))
	}
	defer func() { _ = stmt.Close() }()

	for i, p := range products {
		if p == nil || strings.TrimSpace(p.SKU) == "" {
			return wrapError("upsert_products", fmt.Errorf("invalid product at index %d: %w", i, ErrMissingSKU))
		}
		_, err := stmt.ExecContext(ctx,
			p.SKU,
			nullString(p.BrandName), nullString(p.ProductName), nullString(p.Category),
			nullString(p.Color), nullString(p.Size), nullString(p.Material),
			nullString(p.UPC), nullString(p.EAN), nullString(p.ISBN),
			nullString(p.ASIN), nullString(p.ModelNumber),
			nullFloat(p.Price), nullInt(p.InventoryCount),
		)
		if err != nil {
			return wrapError("upsert_products", fmt.Errorf("failed to insert product at index %d: %w", i, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapError("upsert_products", fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// GetProduct returns the product with the given SKU, or ErrNotFound.
func (s *Store) GetProduct(ctx context.Context, sku string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, wrapError("get_product", ErrStoreClosed)
	}

	row := s.db.QueryRowContext(ctx, selectProducts+" WHERE sku = ?", sku)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, wrapError("get_product", ErrNotFound)
	}
	if err != nil {
		return nil, wrapError("get_product", err)
	}
	return p, nil
}

// ListProducts returns all products, optionally filtered by category.
// An empty category returns the full catalog.
func (s *Store) ListProducts(ctx context.Context, category string) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, wrapError("list_products", ErrStoreClosed)
	}

	query := selectProducts
	args := []interface{}{}
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY sku"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapError("list_products", fmt.Errorf("failed to query products: %w", err))
	}
	defer func() { _ = rows.Close() }()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapError("list_products", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapError("list_products", fmt.Errorf("error iterating rows: %w", err))
	}
	return products, nil
}

// DeleteProducts removes products (and their embeddings via cascade) by
// SKU, chunking the IN clause to stay under the SQLite parameter limit.
func (s *Store) DeleteProducts(ctx context.Context, skus []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return wrapError("delete_products", ErrStoreClosed)
	}

	validSKUs := make([]string, 0, len(skus))
	for _, sku := range skus {
		if strings.TrimSpace(sku) != "" {
			validSKUs = append(validSKUs, sku)
		}
	}
	if len(validSKUs) == 0 {
		return nil
	}

	chunkSize := 500
	for i := 0; i < len(validSKUs); i += chunkSize {
		end := i + chunkSize
		if end > len(validSKUs) {
			end = len(validSKUs)
		}

		chunk := validSKUs[i:end]
		placeholders := make([]string, len(chunk))
		args := make([]interface{}, len(chunk))
		for j, sku := range chunk {
			placeholders[j] = "?"
			args[j] = sku
		}

		query := fmt.Sprintf("DELETE FROM products WHERE sku IN (%s)", strings.Join(placeholders, ","))
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return wrapError("delete_products", fmt.Errorf("failed to delete chunk: %w", err))
		}
	}
	return nil
}

// UpsertEmbedding stores the embedding vector for a SKU.
func (s *Store) UpsertEmbedding(ctx context.Context, sku string, vector []float32) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return wrapError("upsert_embedding", ErrStoreClosed)
	}
	if strings.TrimSpace(sku) == "" {
		return wrapError("upsert_embedding", ErrMissingSKU)
	}
	if err := encoding.ValidateVector(vector); err != nil {
		return wrapError("upsert_embedding", err)
	}

	vectorBytes, err := encoding.EncodeVector(vector)
	if err != nil {
		return wrapError("upsert_embedding", err)
	}

	query := `
	INSERT OR REPLACE INTO product_embeddings (sku, vector, created_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	`
	if _, err := s.db.ExecContext(ctx, query, sku, vectorBytes); err != nil {
		return wrapError("upsert_embedding", fmt.Errorf("failed to insert embedding: %w", err))
	}
	return nil
}

// Embeddings returns all stored embedding vectors keyed by SKU. SKUs
// without a vector are simply absent from the map.
func (s *Store) Embeddings(ctx context.Context) (map[string][]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, wrapError("embeddings", ErrStoreClosed)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT sku, vector FROM product_embeddings")
	if err != nil {
		return nil, wrapError("embeddings", fmt.Errorf("failed to query embeddings: %w", err))
	}
	defer func() { _ = rows.Close() }()

	embeddings := make(map[string][]float32)
	for rows.Next() {
		var sku string
		var vectorBytes []byte
		if err := rows.Scan(&sku, &vectorBytes); err != nil {
			return nil, wrapError("embeddings", fmt.Errorf("failed to scan embedding: %w", err))
		}
		vec, err := encoding.DecodeVector(vectorBytes)
		if err != nil {
			continue // Skip corrupt vectors
		}
		embeddings[sku] = vec
	}

	if err := rows.Err(); err != nil {
		return nil, wrapError("embeddings", fmt.Errorf("error iterating rows: %w", err))
	}
	return embeddings, nil
}

// StoreStats provides statistics about the catalog store
type StoreStats struct {
	Products   int64 `json:"products"`
	Embeddings int64 `json:"embeddings"`
}

// Stats returns row counts for products and embeddings.
func (s *Store) Stats(ctx context.Context) (StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats StoreStats
	if s.closed {
		return stats, wrapError("stats", ErrStoreClosed)
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&stats.Products); err != nil {
		return stats, wrapError("stats", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM product_embeddings").Scan(&stats.Embeddings); err != nil {
		return stats, wrapError("stats", err)
	}
	return stats, nil
}

// Close closes the store and releases resources.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const selectProducts = `
SELECT sku, brand_name, product_name, category, color, size, material,
       upc, ean, isbn, asin, model_number, price, inventory_count
FROM products`

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	var brand, name, category, color, size, material sql.NullString
	var upc, ean, isbn, asin, model sql.NullString
	var price sql.NullFloat64
	var inventory sql.NullInt64

	err := row.Scan(&p.SKU, &brand, &name, &category, &color, &size, &material,
		&upc, &ean, &isbn, &asin, &model, &price, &inventory)
	if err != nil {
		return nil, err
	}

	p.BrandName = brand.String
	p.ProductName = name.String
	p.Category = category.String
	p.Color = color.String
	p.Size = size.String
	p.Material = material.String
	p.UPC = upc.String
	p.EAN = ean.String
	p.ISBN = isbn.String
	p.ASIN = asin.String
	p.ModelNumber = model.String
	if price.Valid {
		v := price.Float64
		p.Price = &v
	}
	if inventory.Valid {
		v := int(inventory.Int64)
		p.InventoryCount = &v
	}
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: strings.TrimSpace(s) != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
