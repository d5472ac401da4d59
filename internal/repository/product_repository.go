package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"karat/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnknownTable    = errors.New("unknown product table")
)

// ProductRepository defines read access to the denormalized catalog.
type ProductRepository interface {
	// FindByID fetches a product row from one named catalog table.
	FindByID(ctx context.Context, table, id string) (*domain.Product, error)
	// FindAnyByID searches the given tables in order; first match wins.
	FindAnyByID(ctx context.Context, tables []string, id string) (*domain.Product, string, error)
	// Resolve locates a product by id without knowing its category: one
	// consolidated-table lookup first, then the fixed ordered scan of all
	// per-category tables as fallback.
	Resolve(ctx context.Context, id string) (*domain.Product, string, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// validTables is the allowlist guarding table-name interpolation.
var validTables = func() map[string]bool {
	m := make(map[string]bool, len(domain.ProductTables))
	for _, t := range domain.ProductTables {
		m[t] = true
	}
	return m
}()

const productColumns = `
	id, name, COALESCE(description, ''), price, original_price, discount_percentage,
	COALESCE(category, ''), COALESCE(material, ''), COALESCE(color, ''),
	to_json(sizes)::TEXT, COALESCE(lengths_and_prices::TEXT, ''),
	in_stock, ships_today,
	COALESCE(stripe_price_id, ''), COALESCE(stripe_product_id, ''),
	COALESCE(image_url, ''), rating, review_count, created_at, updated_at
`

func scanProduct(row *sql.Row) (*domain.Product, error) {
	var (
		p          domain.Product
		origPrice  sql.NullInt64
		discount   sql.NullInt64
		sizesJSON  string
		lengthsRaw string
	)

	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &origPrice, &discount,
		&p.Category, &p.Material, &p.Color,
		&sizesJSON, &lengthsRaw,
		&p.InStock, &p.ShipsToday,
		&p.StripePriceID, &p.StripeProductID,
		&p.ImageURL, &p.Rating, &p.ReviewCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if origPrice.Valid {
		p.OriginalPrice = &origPrice.Int64
	}
	if discount.Valid {
		p.DiscountPercentage = &discount.Int64
	}
	if sizesJSON != "" {
		if err := json.Unmarshal([]byte(sizesJSON), &p.Sizes); err != nil {
			return nil, fmt.Errorf("failed to decode sizes: %w", err)
		}
	}
	if lengthsRaw != "" {
		if err := json.Unmarshal([]byte(lengthsRaw), &p.LengthsAndPrices); err != nil {
			return nil, fmt.Errorf("failed to decode lengths_and_prices: %w", err)
		}
	}

	return &p, nil
}

// FindByID retrieves a product by id from one catalog table. The table name
// is validated against the allowlist before being interpolated.
func (r *productRepository) FindByID(ctx context.Context, table, id string) (*domain.Product, error) {
	if !validTables[table] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, productColumns, table)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product in %s: %w", table, err)
	}

	return product, nil
}

// FindAnyByID queries the given tables in order and returns the first row
// matching id along with the table that held it.
func (r *productRepository) FindAnyByID(ctx context.Context, tables []string, id string) (*domain.Product, string, error) {
	for _, table := range tables {
		product, err := r.FindByID(ctx, table, id)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				continue
			}
			return nil, "", err
		}
		return product, table, nil
	}
	return nil, "", ErrProductNotFound
}

// Resolve looks a product up by id alone. The consolidated products table
// answers in one query; rows missing from it fall back to the ordered
// per-category scan so a stale mirror cannot lose sales.
func (r *productRepository) Resolve(ctx context.Context, id string) (*domain.Product, string, error) {
	query := fmt.Sprintf(`
		SELECT %s, source_table
		FROM %s
		WHERE id = $1
		ORDER BY array_position($2::TEXT[], source_table)
		LIMIT 1
	`, productColumns, domain.ConsolidatedTable)

	var (
		p           domain.Product
		origPrice   sql.NullInt64
		discount    sql.NullInt64
		sizesJSON   string
		lengthsRaw  string
		sourceTable string
	)
	err := r.db.QueryRowContext(ctx, query, id, tableOrderArray()).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &origPrice, &discount,
		&p.Category, &p.Material, &p.Color,
		&sizesJSON, &lengthsRaw,
		&p.InStock, &p.ShipsToday,
		&p.StripePriceID, &p.StripeProductID,
		&p.ImageURL, &p.Rating, &p.ReviewCount, &p.CreatedAt, &p.UpdatedAt,
		&sourceTable,
	)
	if err == nil {
		if origPrice.Valid {
			p.OriginalPrice = &origPrice.Int64
		}
		if discount.Valid {
			p.DiscountPercentage = &discount.Int64
		}
		if sizesJSON != "" {
			if err := json.Unmarshal([]byte(sizesJSON), &p.Sizes); err != nil {
				return nil, "", fmt.Errorf("failed to decode sizes: %w", err)
			}
		}
		if lengthsRaw != "" {
			if err := json.Unmarshal([]byte(lengthsRaw), &p.LengthsAndPrices); err != nil {
				return nil, "", fmt.Errorf("failed to decode lengths_and_prices: %w", err)
			}
		}
		return &p, sourceTable, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("failed to resolve product: %w", err)
	}

	return r.FindAnyByID(ctx, domain.ProductTables, id)
}

// tableOrderArray renders the resolution order as a postgres array literal
// for array_position.
func tableOrderArray() string {
	out := "{"
	for i, t := range domain.ProductTables {
		if i > 0 {
			out += ","
		}
		out += t
	}
	return out + "}"
}
