package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Order lifecycle statuses.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)

// Order is one persisted order line. Both the pre-payment stub and the
// post-payment record share the (StripeSessionID, LineIndex) identity, so
// the webhook promotes the stub in place and redelivery cannot duplicate
// paid rows.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	StripeSessionID string          `json:"stripe_session_id" db:"stripe_session_id"`
	LineIndex       int             `json:"line_index" db:"line_index"`
	ProductID       string          `json:"product_id" db:"product_id"`
	SourceTable     string          `json:"source_table" db:"source_table"`
	ProductDetails  json.RawMessage `json:"product_details" db:"product_details"`
	SelectedSize    string          `json:"selected_size,omitempty" db:"selected_size"`
	SelectedLength  string          `json:"selected_length,omitempty" db:"selected_length"`
	Quantity        int64           `json:"quantity" db:"quantity"`
	Amount          int64           `json:"amount" db:"amount"`
	Status          string          `json:"status" db:"status"`
	GuestEmail      string          `json:"guest_email" db:"guest_email"`
	CustomerDetails json.RawMessage `json:"customer_details,omitempty" db:"customer_details"`
	ShippingDetails json.RawMessage `json:"shipping_details,omitempty" db:"shipping_details"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty" db:"payment_intent_id"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}
