package transport

import (
	"net/http"

	"karat/internal/middleware"
	"karat/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReviewsHandler serves the store's Google reviews
type ReviewsHandler struct {
	reviewsService service.ReviewsService
	logger         *zap.Logger
}

// NewReviewsHandler creates a new ReviewsHandler
func NewReviewsHandler(reviewsService service.ReviewsService, logger *zap.Logger) *ReviewsHandler {
	return &ReviewsHandler{
		reviewsService: reviewsService,
		logger:         logger,
	}
}

// RegisterRoutes registers the reviews route
func (h *ReviewsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/reviews", h.GetReviews)
}

// GetReviews returns cached Google reviews for the storefront
func (h *ReviewsHandler) GetReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewsService.Fetch(r.Context())
	if err != nil {
		h.logger.Error("Failed to fetch reviews", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to fetch reviews")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, reviews)
}
