package transport

import (
	"encoding/json"
	"net/http"

	"karat/internal/domain"
	"karat/internal/middleware"
	"karat/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ConfirmationLineRequest is one order line in the confirmation payload.
type ConfirmationLineRequest struct {
	ProductDetails json.RawMessage `json:"product_details" validate:"required"`
	SelectedSize   string          `json:"selected_size"`
	SelectedLength string          `json:"selected_length"`
	Amount         int64           `json:"amount" validate:"required,gt=0"`
}

// ConfirmationRequest represents the order-confirmation email payload
type ConfirmationRequest struct {
	Email              string                    `json:"email" validate:"required,email"`
	OrderNumber        string                    `json:"orderNumber" validate:"required"`
	Orders             []ConfirmationLineRequest `json:"orders" validate:"required,min=1,dive"`
	TotalAmount        int64                     `json:"totalAmount" validate:"required,gt=0"`
	PromoCode          string                    `json:"promoCode"`
	DiscountPercentage int64                     `json:"discountPercentage"`
}

// ConfirmationResponse mirrors the storefront's expected send result
type ConfirmationResponse struct {
	Success bool   `json:"success"`
	EmailID string `json:"emailId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OrdersHandler handles order-confirmation email requests
type OrdersHandler struct {
	notifier service.NotificationService
	logger   *zap.Logger
}

// NewOrdersHandler creates a new OrdersHandler
func NewOrdersHandler(notifier service.NotificationService, logger *zap.Logger) *OrdersHandler {
	return &OrdersHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// RegisterRoutes registers order routes
func (h *OrdersHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/orders/confirmation", h.SendConfirmation)
}

// SendConfirmation renders and dispatches the confirmation email. Send
// failure is reported in the body rather than as a 5xx: the payment has
// already succeeded and the caller decides what a failed email means.
func (h *OrdersHandler) SendConfirmation(w http.ResponseWriter, r *http.Request) {
	var req ConfirmationRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Confirmation request invalid", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.ConfirmationInput{
		Email:              req.Email,
		OrderNumber:        req.OrderNumber,
		TotalAmount:        req.TotalAmount,
		PromoCode:          req.PromoCode,
		DiscountPercentage: req.DiscountPercentage,
	}
	for _, line := range req.Orders {
		input.Orders = append(input.Orders, &domain.Order{
			ProductDetails: line.ProductDetails,
			SelectedSize:   line.SelectedSize,
			SelectedLength: line.SelectedLength,
			Amount:         line.Amount,
		})
	}

	emailID, err := h.notifier.SendConfirmation(r.Context(), input)
	if err != nil {
		h.logger.Error("Confirmation email failed",
			zap.Error(err),
			zap.String("order_number", req.OrderNumber),
		)
		middleware.RespondWithJSON(w, http.StatusOK, ConfirmationResponse{Success: false, Error: err.Error()})
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ConfirmationResponse{Success: true, EmailID: emailID})
}
