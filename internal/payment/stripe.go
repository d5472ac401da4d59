package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/stripe/stripe-go/v80/webhook"
)

type stripeGateway struct {
	api *client.API
}

// NewStripeGateway creates a Gateway backed by the Stripe API.
func NewStripeGateway(secretKey string) Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &stripeGateway{api: api}
}

// CreateCheckoutSession opens a payment-mode checkout session with one
// price line per cart item.
func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx

	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	} else if req.CustomerEmail != "" {
		// Guest checkout: no customer object, just the receipt email.
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}

	for _, line := range req.Lines {
		item := &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(line.Quantity),
		}
		if line.PriceRef != "" {
			item.Price = stripe.String(line.PriceRef)
		} else {
			priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(line.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			}
			if line.Description != "" {
				priceData.ProductData.Description = stripe.String(line.Description)
			}
			if line.ImageURL != "" {
				priceData.ProductData.Images = []*string{stripe.String(line.ImageURL)}
			}
			item.PriceData = priceData
		}
		params.LineItems = append(params.LineItems, item)
	}

	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &Session{ID: session.ID, URL: session.URL}, nil
}

// FindCustomerByEmail returns the first customer matching the exact email.
func (g *stripeGateway) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := g.api.Customers.List(params)
	for iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("failed to look up customer: %w", err)
	}

	return "", nil
}

type webhookVerifier struct {
	secret string
}

// NewWebhookVerifier creates a SignatureVerifier for the given signing
// secret.
func NewWebhookVerifier(secret string) SignatureVerifier {
	return &webhookVerifier{secret: secret}
}

func (v *webhookVerifier) Verify(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, v.secret)
}
