package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"karat/internal/repository"
)

// PromoResult is the advisory outcome of validating a code. Validation
// never consumes the code; redemption accounting happens elsewhere.
type PromoResult struct {
	Valid              bool   `json:"valid"`
	Code               string `json:"code,omitempty"`
	DiscountPercentage int64  `json:"discountPercentage,omitempty"`
	Message            string `json:"message"`
}

// PromoService validates discount codes.
type PromoService interface {
	Validate(ctx context.Context, code string) (PromoResult, error)
}

type promoService struct {
	promos repository.PromoRepository
	now    func() time.Time
}

// NewPromoService creates a new instance of PromoService.
func NewPromoService(promos repository.PromoRepository) PromoService {
	return &promoService{promos: promos, now: time.Now}
}

// Validate checks a code against its active/expiry/usage-limit record.
// Every rejection is a normal result, not an error; only storage failures
// surface as errors.
func (s *promoService) Validate(ctx context.Context, code string) (PromoResult, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return PromoResult{Valid: false, Message: "Invalid promo code"}, nil
	}

	promo, err := s.promos.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrPromoCodeNotFound) {
			return PromoResult{Valid: false, Message: "Invalid promo code"}, nil
		}
		return PromoResult{}, err
	}

	if !promo.Active {
		return PromoResult{Valid: false, Message: "Invalid promo code"}, nil
	}
	if promo.ExpiresAt != nil && promo.ExpiresAt.Before(s.now()) {
		return PromoResult{Valid: false, Message: "This promo code has expired"}, nil
	}
	if promo.UsageLimit != nil && promo.UsageCount >= *promo.UsageLimit {
		return PromoResult{Valid: false, Message: "This promo code has reached its usage limit"}, nil
	}

	return PromoResult{
		Valid:              true,
		Code:               promo.Code,
		DiscountPercentage: promo.DiscountPercentage,
		Message:            fmt.Sprintf("Promo code applied! %d%% off", promo.DiscountPercentage),
	}, nil
}
