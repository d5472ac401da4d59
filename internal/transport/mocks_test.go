package transport

import (
	"context"
	"errors"

	"karat/internal/service"

	"github.com/stripe/stripe-go/v80"
)

// stubCheckoutService answers with a fixed URL and records its inputs.
type stubCheckoutService struct {
	url          string
	err          error
	lastCheckout *service.CheckoutInput
	lastBuyNow   *service.BuyNowInput
}

func (s *stubCheckoutService) CreateSession(_ context.Context, input service.CheckoutInput) (string, error) {
	s.lastCheckout = &input
	return s.url, s.err
}

func (s *stubCheckoutService) BuyNow(_ context.Context, input service.BuyNowInput) (string, error) {
	s.lastBuyNow = &input
	return s.url, s.err
}

type stubPromoService struct {
	result service.PromoResult
	err    error
}

func (s *stubPromoService) Validate(context.Context, string) (service.PromoResult, error) {
	return s.result, s.err
}

type stubWebhookService struct {
	err   error
	calls int
	last  stripe.Event
}

func (s *stubWebhookService) HandleEvent(_ context.Context, event stripe.Event) error {
	s.calls++
	s.last = event
	return s.err
}

type stubNotificationService struct {
	emailID string
	err     error
	last    *service.ConfirmationInput
}

func (s *stubNotificationService) SendConfirmation(_ context.Context, input service.ConfirmationInput) (string, error) {
	s.last = &input
	return s.emailID, s.err
}

// stubVerifier accepts or rejects every payload outright.
type stubVerifier struct {
	event stripe.Event
	err   error
}

func (s *stubVerifier) Verify([]byte, string) (stripe.Event, error) {
	return s.event, s.err
}

var errBackend = errors.New("backend unavailable")
