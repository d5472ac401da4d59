package transport

import (
	"net/http"

	"karat/internal/middleware"
	"karat/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PromoRequest represents the promo validation payload
type PromoRequest struct {
	Code string `json:"code" validate:"required"`
}

// PromoHandler handles HTTP requests for promo code validation
type PromoHandler struct {
	promoService service.PromoService
	logger       *zap.Logger
}

// NewPromoHandler creates a new PromoHandler
func NewPromoHandler(promoService service.PromoService, logger *zap.Logger) *PromoHandler {
	return &PromoHandler{
		promoService: promoService,
		logger:       logger,
	}
}

// RegisterRoutes registers promo routes
func (h *PromoHandler) RegisterRoutes(r chi.Router, rateLimiter func(http.Handler) http.Handler) {
	r.Route("/api/promo", func(r chi.Router) {
		if rateLimiter != nil {
			r.Use(rateLimiter)
		}
		r.Post("/validate", h.Validate)
	})
}

// Validate handles promo code validation. Rejections are 200 responses
// with valid=false; only storage failures are errors.
func (h *PromoHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req PromoRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Promo validation request invalid", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.promoService.Validate(r.Context(), req.Code)
	if err != nil {
		h.logger.Error("Promo validation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to validate promo code")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}
