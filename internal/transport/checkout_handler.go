package transport

import (
	"errors"
	"net/http"

	"karat/internal/middleware"
	"karat/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutItemRequest is one cart line in the checkout payload.
type CheckoutItemRequest struct {
	ProductID      string `json:"productId" validate:"required"`
	SourceTable    string `json:"sourceTable" validate:"required"`
	SelectedSize   string `json:"selectedSize"`
	SelectedLength string `json:"selectedLength"`
	Quantity       int64  `json:"quantity" validate:"required,gt=0"`
}

// CheckoutRequest represents the full-cart checkout payload
type CheckoutRequest struct {
	Items         []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
	CustomerEmail string                `json:"customerEmail" validate:"required,email"`
	PromoCode     string                `json:"promoCode"`
}

// BuyNowRequest represents the single-item checkout payload
type BuyNowRequest struct {
	ProductID     string `json:"productId" validate:"required"`
	SelectedSize  string `json:"selectedSize"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
}

// CheckoutResponse carries the payment redirect URL
type CheckoutResponse struct {
	URL string `json:"url"`
}

// CheckoutHandler handles HTTP requests for checkout-session creation
type CheckoutHandler struct {
	checkoutService service.CheckoutService
	fallbackOrigin  string
	logger          *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService service.CheckoutService, fallbackOrigin string, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		fallbackOrigin:  fallbackOrigin,
		logger:          logger,
	}
}

// RegisterRoutes registers checkout routes
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, rateLimiter func(http.Handler) http.Handler) {
	r.Route("/api/checkout", func(r chi.Router) {
		if rateLimiter != nil {
			r.Use(rateLimiter)
		}
		r.Post("/session", h.CreateSession)
		r.Post("/buy-now", h.BuyNow)
	})
}

// CreateSession handles full-cart checkout
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Checkout validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.CheckoutInput{
		CustomerEmail: req.CustomerEmail,
		PromoCode:     req.PromoCode,
		Origin:        h.origin(r),
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.CheckoutItem{
			ProductID:      item.ProductID,
			SourceTable:    item.SourceTable,
			SelectedSize:   item.SelectedSize,
			SelectedLength: item.SelectedLength,
			Quantity:       item.Quantity,
		})
	}

	url, err := h.checkoutService.CreateSession(r.Context(), input)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	h.logger.Info("Checkout session created", zap.Int("items", len(req.Items)))
	middleware.RespondWithJSON(w, http.StatusOK, CheckoutResponse{URL: url})
}

// BuyNow handles the single-item checkout variant
func (h *CheckoutHandler) BuyNow(w http.ResponseWriter, r *http.Request) {
	var req BuyNowRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Buy-now validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	url, err := h.checkoutService.BuyNow(r.Context(), service.BuyNowInput{
		ProductID:     req.ProductID,
		SelectedSize:  req.SelectedSize,
		CustomerEmail: req.CustomerEmail,
		Origin:        h.origin(r),
	})
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	h.logger.Info("Buy-now session created", zap.String("product_id", req.ProductID))
	middleware.RespondWithJSON(w, http.StatusOK, CheckoutResponse{URL: url})
}

func (h *CheckoutHandler) respondCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		h.logger.Warn("Checkout failed: product not found", zap.Error(err))
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrEmptyCart):
		middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
	default:
		h.logger.Error("Checkout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create checkout session")
	}
}

// origin resolves the storefront origin the redirect URLs are built on.
func (h *CheckoutHandler) origin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin
	}
	return h.fallbackOrigin
}
