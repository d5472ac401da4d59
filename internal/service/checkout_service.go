package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"karat/internal/domain"
	"karat/internal/payment"
	"karat/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrProductNotFound = repository.ErrProductNotFound
)

// CheckoutItem is one requested cart line as sent by the storefront.
type CheckoutItem struct {
	ProductID      string
	SourceTable    string
	SelectedSize   string
	SelectedLength string
	Quantity       int64
}

// CheckoutInput is the full-cart checkout request.
type CheckoutInput struct {
	Items         []CheckoutItem
	CustomerEmail string
	PromoCode     string
	// Origin is the storefront origin the success/cancel URLs are built on.
	Origin string
}

// BuyNowInput is the single-item checkout variant used by the grillz and
// custom product pages.
type BuyNowInput struct {
	ProductID     string
	SelectedSize  string
	CustomerEmail string
	Origin        string
}

// CheckoutService opens payment-processor sessions for carts.
type CheckoutService interface {
	CreateSession(ctx context.Context, input CheckoutInput) (string, error)
	BuyNow(ctx context.Context, input BuyNowInput) (string, error)
}

type checkoutService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	promos   PromoService
	gateway  payment.Gateway
	logger   *zap.Logger
}

// NewCheckoutService creates a new instance of CheckoutService.
func NewCheckoutService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	promos PromoService,
	gateway payment.Gateway,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		products: products,
		orders:   orders,
		promos:   promos,
		gateway:  gateway,
		logger:   logger,
	}
}

// CreateSession resolves every cart line against its source table, opens the
// remote checkout session, and writes one pending order stub per line. Any
// product miss fails the whole request; stub-write failures do not, since
// the remote session already exists and must be returned to the caller.
func (s *checkoutService) CreateSession(ctx context.Context, input CheckoutInput) (string, error) {
	if len(input.Items) == 0 {
		return "", ErrEmptyCart
	}

	type resolvedLine struct {
		item      CheckoutItem
		product   *domain.Product
		unitPrice int64
		priceRef  string
	}

	lines := make([]resolvedLine, 0, len(input.Items))
	cartItems := make([]domain.CartItem, 0, len(input.Items))
	for _, item := range input.Items {
		product, err := s.products.FindByID(ctx, item.SourceTable, item.ProductID)
		if err != nil {
			return "", fmt.Errorf("item %s in %s: %w", item.ProductID, item.SourceTable, err)
		}

		unitPrice := product.UnitPrice(item.SelectedLength)
		priceRef := product.StripePriceID
		if item.SelectedLength != "" {
			if lp := product.LengthPrice(item.SelectedLength); lp != nil {
				priceRef = lp.PaymentPriceRef
			}
		}

		lines = append(lines, resolvedLine{item: item, product: product, unitPrice: unitPrice, priceRef: priceRef})
		cartItems = append(cartItems, domain.CartItem{
			ProductID:      item.ProductID,
			SourceTable:    item.SourceTable,
			Name:           product.Name,
			Price:          unitPrice,
			ImageURL:       product.ImageURL,
			SelectedSize:   item.SelectedSize,
			SelectedLength: item.SelectedLength,
			Quantity:       item.Quantity,
		})
	}

	metadata := map[string]string{}
	encodedCart, err := domain.EncodeCartItems(cartItems)
	if err != nil {
		return "", err
	}
	metadata["cart_items"] = encodedCart

	if input.PromoCode != "" {
		result, err := s.promos.Validate(ctx, input.PromoCode)
		if err != nil {
			return "", err
		}
		// Invalid codes are dropped silently; validation is advisory and
		// the storefront already surfaced the rejection.
		if result.Valid {
			metadata["promo_code"] = result.Code
			metadata["discount_percentage"] = strconv.FormatInt(result.DiscountPercentage, 10)
		}
	}

	customerID, err := s.gateway.FindCustomerByEmail(ctx, input.CustomerEmail)
	if err != nil {
		return "", err
	}

	req := payment.SessionRequest{
		CustomerID:    customerID,
		CustomerEmail: input.CustomerEmail,
		SuccessURL:    input.Origin + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     input.Origin + "/cart",
		Metadata:      metadata,
	}
	if customerID != "" {
		req.CustomerEmail = ""
	}
	for _, line := range lines {
		req.Lines = append(req.Lines, payment.Line{
			Name:        line.product.Name,
			Description: line.product.Description,
			ImageURL:    line.product.ImageURL,
			PriceRef:    line.priceRef,
			UnitAmount:  line.unitPrice,
			Quantity:    line.item.Quantity,
		})
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		return "", err
	}

	// Best effort: the remote session exists either way, so the shopper
	// must always get the redirect URL back.
	for i, line := range lines {
		stub := &domain.Order{
			ID:              uuid.New(),
			StripeSessionID: session.ID,
			LineIndex:       i,
			ProductID:       line.item.ProductID,
			SourceTable:     line.item.SourceTable,
			ProductDetails:  line.product.Snapshot(),
			SelectedSize:    line.item.SelectedSize,
			SelectedLength:  line.item.SelectedLength,
			Quantity:        line.item.Quantity,
			Amount:          line.unitPrice * line.item.Quantity,
			Status:          domain.OrderStatusPending,
			GuestEmail:      input.CustomerEmail,
		}
		if err := s.orders.InsertPending(ctx, stub); err != nil {
			s.logger.Error("Failed to write pending order stub",
				zap.Error(err),
				zap.String("session_id", session.ID),
				zap.String("product_id", line.item.ProductID),
				zap.Int("line_index", i),
			)
		}
	}

	return session.URL, nil
}

// BuyNow resolves a single product against the fixed two-table search order
// and funnels it through the regular session path with quantity one.
func (s *checkoutService) BuyNow(ctx context.Context, input BuyNowInput) (string, error) {
	_, table, err := s.products.FindAnyByID(ctx, domain.BuyNowTables, input.ProductID)
	if err != nil {
		return "", fmt.Errorf("buy now %s: %w", input.ProductID, err)
	}

	return s.CreateSession(ctx, CheckoutInput{
		Items: []CheckoutItem{{
			ProductID:    input.ProductID,
			SourceTable:  table,
			SelectedSize: input.SelectedSize,
			Quantity:     1,
		}},
		CustomerEmail: input.CustomerEmail,
		Origin:        input.Origin,
	})
}
