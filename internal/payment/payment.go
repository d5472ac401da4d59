// Package payment wraps the Stripe API surface the checkout flow touches:
// checkout-session creation, customer lookup by email, and webhook
// signature verification.
package payment

import (
	"context"

	"github.com/stripe/stripe-go/v80"
)

// Line is one price line of a checkout session.
type Line struct {
	Name        string
	Description string
	ImageURL    string
	// PriceRef is a pre-registered payment-processor price id. When set it
	// is used verbatim; otherwise the line carries inline price data.
	PriceRef   string
	UnitAmount int64
	Quantity   int64
}

// SessionRequest carries everything needed to open a remote checkout
// session. Metadata values travel to the webhook as strings.
type SessionRequest struct {
	CustomerID    string
	CustomerEmail string
	Lines         []Line
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// Session is the subset of the remote session the initiator hands back.
type Session struct {
	ID  string
	URL string
}

// Gateway is the payment-processor client used by the checkout service.
type Gateway interface {
	// CreateCheckoutSession opens a remote session. Not idempotent: a retry
	// after a network failure can open a second session.
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	// FindCustomerByEmail returns the id of the first customer matching the
	// exact email, or "" when none exists.
	FindCustomerByEmail(ctx context.Context, email string) (string, error)
}

// SignatureVerifier authenticates inbound webhook payloads.
type SignatureVerifier interface {
	Verify(payload []byte, sigHeader string) (stripe.Event, error)
}
