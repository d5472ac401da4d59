package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"karat/internal/config"
	"karat/internal/mailer"
	custommiddleware "karat/internal/middleware"
	"karat/internal/payment"
	"karat/internal/repository"
	"karat/internal/service"
	"karat/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	promoRepo := repository.NewPromoRepository(db)

	// Initialize external collaborators
	gateway := payment.NewStripeGateway(cfg.Stripe.SecretKey)
	verifier := payment.NewWebhookVerifier(cfg.Stripe.WebhookSecret)
	sender := mailer.NewResendSender(cfg.Email.ResendAPIKey)

	// Initialize services
	promoService := service.NewPromoService(promoRepo)
	notificationService := service.NewNotificationService(sender, cfg.Email.From, cfg.Email.BCC, logger)
	checkoutService := service.NewCheckoutService(productRepo, orderRepo, promoService, gateway, logger)
	webhookService := service.NewWebhookService(productRepo, orderRepo, notificationService, logger)
	reviewsService := service.NewReviewsService(cfg.Places, redisClient, logger)

	// Public endpoints get a per-IP limiter; the webhook does not, since
	// Stripe's retry bursts must never be throttled into redelivery loops.
	checkoutLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 20,
		Window:            time.Minute,
		KeyPrefix:         "rl:checkout",
	}, logger)
	promoLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 30,
		Window:            time.Minute,
		KeyPrefix:         "rl:promo",
	}, logger)

	// Initialize handlers
	fallbackOrigin := "https://karatjewelry.com"
	if len(cfg.CORS.AllowedOrigins) > 0 && cfg.CORS.AllowedOrigins[0] != "*" {
		fallbackOrigin = cfg.CORS.AllowedOrigins[0]
	}
	checkoutHandler := transport.NewCheckoutHandler(checkoutService, fallbackOrigin, logger)
	webhookHandler := transport.NewWebhookHandler(verifier, webhookService, logger)
	promoHandler := transport.NewPromoHandler(promoService, logger)
	ordersHandler := transport.NewOrdersHandler(notificationService, logger)
	reviewsHandler := transport.NewReviewsHandler(reviewsService, logger)

	// Register routes
	checkoutHandler.RegisterRoutes(router, checkoutLimiter)
	webhookHandler.RegisterRoutes(router)
	promoHandler.RegisterRoutes(router, promoLimiter)
	ordersHandler.RegisterRoutes(router)
	reviewsHandler.RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
