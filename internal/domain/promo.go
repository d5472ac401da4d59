package domain

import "time"

// PromoCode is a discount code row. Validation is a pure read; nothing in
// the checkout flow increments UsageCount.
type PromoCode struct {
	Code               string     `json:"code" db:"code"`
	Active             bool       `json:"active" db:"active"`
	DiscountPercentage int64      `json:"discount_percentage" db:"discount_percentage"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	UsageLimit         *int64     `json:"usage_limit,omitempty" db:"usage_limit"`
	UsageCount         int64      `json:"usage_count" db:"usage_count"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
}
