package transport

import (
	"errors"
	"io"
	"net/http"

	"karat/internal/middleware"
	"karat/internal/payment"
	"karat/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxWebhookBody caps the raw payload read for signature verification.
const maxWebhookBody = 1 << 16

// WebhookHandler receives payment-processor webhook deliveries
type WebhookHandler struct {
	verifier       payment.SignatureVerifier
	webhookService service.WebhookService
	logger         *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(verifier payment.SignatureVerifier, webhookService service.WebhookService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:       verifier,
		webhookService: webhookService,
		logger:         logger,
	}
}

// RegisterRoutes registers the webhook route
func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/stripe/webhook", h.HandleWebhook)
}

// HandleWebhook verifies the delivery signature and reconciles the event.
// Verification happens before anything else: an unverified payload must
// never reach the database, and the 400 keeps the processor from treating
// the delivery as accepted.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("Failed to read webhook body", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "unreadable payload")
		return
	}

	event, err := h.verifier.Verify(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("Webhook signature verification failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	if err := h.webhookService.HandleEvent(r.Context(), event); err != nil {
		if errors.Is(err, service.ErrMissingCartMetadata) {
			h.logger.Warn("Webhook session has no cart metadata", zap.String("event_id", event.ID))
			middleware.RespondWithError(w, http.StatusBadRequest, "missing cart metadata")
			return
		}

		// Non-2xx makes the processor redeliver; the reconciler's upsert
		// keeps redelivery safe.
		h.logger.Error("Webhook reconciliation failed",
			zap.Error(err),
			zap.String("event_id", event.ID),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process event")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
}
