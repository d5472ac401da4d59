package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"karat/internal/domain"
	"karat/internal/repository"

	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// ErrMissingCartMetadata means a completed session carried no usable
// cart_items metadata and cannot be reconciled.
var ErrMissingCartMetadata = errors.New("session metadata has no cart items")

// WebhookService reconciles completed checkout sessions into paid orders.
type WebhookService interface {
	HandleEvent(ctx context.Context, event stripe.Event) error
}

type webhookService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	notifier NotificationService
	logger   *zap.Logger
}

// NewWebhookService creates a new instance of WebhookService.
func NewWebhookService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	notifier NotificationService,
	logger *zap.Logger,
) WebhookService {
	return &webhookService{
		products: products,
		orders:   orders,
		notifier: notifier,
		logger:   logger,
	}
}

// HandleEvent processes one verified webhook event. Events other than
// checkout.session.completed are accepted and ignored. The processor
// delivers at least once, so the per-session writes are an idempotent
// transactional upsert: redelivery lands on the same rows.
func (s *webhookService) HandleEvent(ctx context.Context, event stripe.Event) error {
	if event.Type != "checkout.session.completed" {
		s.logger.Debug("Ignoring webhook event", zap.String("type", string(event.Type)))
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to decode session payload: %w", err)
	}

	raw := sess.Metadata["cart_items"]
	if raw == "" {
		return ErrMissingCartMetadata
	}
	items, err := domain.DecodeCartItems(raw)
	if err != nil || len(items) == 0 {
		return ErrMissingCartMetadata
	}

	var discountPct int64
	if v := sess.Metadata["discount_percentage"]; v != "" {
		discountPct, _ = strconv.ParseInt(v, 10, 64)
	}

	subtotal := domain.Subtotal(items)
	discountAmount := DiscountAmount(subtotal, discountPct)
	gross := make([]int64, len(items))
	for i, it := range items {
		gross[i] = it.Price * it.Quantity
	}
	amounts := SplitAmounts(gross, discountAmount)

	guestEmail := sess.CustomerEmail
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		guestEmail = sess.CustomerDetails.Email
	}
	var customerDetails, shippingDetails json.RawMessage
	if sess.CustomerDetails != nil {
		customerDetails, _ = json.Marshal(sess.CustomerDetails)
	}
	if sess.ShippingDetails != nil {
		shippingDetails, _ = json.Marshal(sess.ShippingDetails)
	}
	var paymentIntentID string
	if sess.PaymentIntent != nil {
		paymentIntentID = sess.PaymentIntent.ID
	}

	orders := make([]*domain.Order, 0, len(items))
	for i, item := range items {
		product, sourceTable, err := s.products.Resolve(ctx, item.ProductID)
		if err != nil {
			if !errors.Is(err, repository.ErrProductNotFound) {
				return fmt.Errorf("resolving item %s: %w", item.ProductID, err)
			}
			// Degraded but non-fatal: record the sale from the cart's own
			// copy of the product.
			s.logger.Warn("Product not found in any catalog table, using cart snapshot",
				zap.String("session_id", sess.ID),
				zap.String("product_id", item.ProductID),
			)
			product = domain.SyntheticProduct(item)
			sourceTable = ""
		}

		orders = append(orders, &domain.Order{
			StripeSessionID: sess.ID,
			LineIndex:       i,
			ProductID:       item.ProductID,
			SourceTable:     sourceTable,
			ProductDetails:  product.Snapshot(),
			SelectedSize:    item.SelectedSize,
			SelectedLength:  item.SelectedLength,
			Quantity:        item.Quantity,
			Amount:          amounts[i],
			Status:          domain.OrderStatusPaid,
			GuestEmail:      guestEmail,
			CustomerDetails: customerDetails,
			ShippingDetails: shippingDetails,
			PaymentIntentID: paymentIntentID,
		})
	}

	if err := s.orders.SavePaid(ctx, orders); err != nil {
		return fmt.Errorf("session %s: %w", sess.ID, err)
	}

	s.logger.Info("Reconciled checkout session",
		zap.String("session_id", sess.ID),
		zap.Int("lines", len(orders)),
		zap.Int64("subtotal", subtotal),
		zap.Int64("discount", discountAmount),
	)

	// Fire and forget: payment already succeeded, a failed confirmation
	// email never fails the webhook.
	if s.notifier != nil && guestEmail != "" {
		if _, err := s.notifier.SendConfirmation(ctx, ConfirmationInput{
			Email:              guestEmail,
			OrderNumber:        sess.ID,
			Orders:             orders,
			TotalAmount:        subtotal - discountAmount,
			PromoCode:          sess.Metadata["promo_code"],
			DiscountPercentage: discountPct,
		}); err != nil {
			s.logger.Error("Failed to send confirmation email",
				zap.Error(err),
				zap.String("session_id", sess.ID),
			)
		}
	}

	return nil
}
