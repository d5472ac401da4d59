package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"karat/internal/domain"
)

var ErrPromoCodeNotFound = errors.New("promo code not found")

// PromoRepository reads discount codes. The checkout flow never writes
// them; usage_count is owned by back-office tooling.
type PromoRepository interface {
	FindByCode(ctx context.Context, code string) (*domain.PromoCode, error)
}

type promoRepository struct {
	db *sql.DB
}

// NewPromoRepository creates a new instance of PromoRepository.
func NewPromoRepository(db *sql.DB) PromoRepository {
	return &promoRepository{db: db}
}

// FindByCode retrieves a promo code row. Callers pass the already
// upper-cased code; codes are stored normalized.
func (r *promoRepository) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	query := `
		SELECT code, active, discount_percentage, expires_at, usage_limit, usage_count, created_at
		FROM promo_codes
		WHERE code = $1
	`

	promo := &domain.PromoCode{}
	var expiresAt sql.NullTime
	var usageLimit sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&promo.Code,
		&promo.Active,
		&promo.DiscountPercentage,
		&expiresAt,
		&usageLimit,
		&promo.UsageCount,
		&promo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPromoCodeNotFound
		}
		return nil, fmt.Errorf("failed to find promo code: %w", err)
	}

	if expiresAt.Valid {
		promo.ExpiresAt = &expiresAt.Time
	}
	if usageLimit.Valid {
		promo.UsageLimit = &usageLimit.Int64
	}

	return promo, nil
}
