package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"karat/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	reviewsCacheKey = "google_reviews"
	reviewsCacheTTL = time.Hour
)

// Review is one Google review rendered on the storefront.
type Review struct {
	Author          string `json:"author_name"`
	Rating          int    `json:"rating"`
	Text            string `json:"text"`
	RelativeTime    string `json:"relative_time_description"`
	ProfilePhotoURL string `json:"profile_photo_url"`
}

// ReviewsResponse is the storefront reviews payload.
type ReviewsResponse struct {
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	Reviews     []Review `json:"reviews"`
}

// ReviewsService fetches the store's Google reviews, caching them in redis
// so the Places API is hit at most once an hour.
type ReviewsService interface {
	Fetch(ctx context.Context) (*ReviewsResponse, error)
}

type reviewsService struct {
	cfg      config.PlacesConfig
	redis    *redis.Client
	client   *http.Client
	endpoint string
	logger   *zap.Logger
}

// NewReviewsService creates a new instance of ReviewsService.
func NewReviewsService(cfg config.PlacesConfig, redisClient *redis.Client, logger *zap.Logger) ReviewsService {
	return &reviewsService{
		cfg:      cfg,
		redis:    redisClient,
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: "https://maps.googleapis.com/maps/api/place/details/json",
		logger:   logger,
	}
}

func (s *reviewsService) Fetch(ctx context.Context) (*ReviewsResponse, error) {
	if cached, err := s.redis.Get(ctx, reviewsCacheKey).Bytes(); err == nil {
		var resp ReviewsResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			return &resp, nil
		}
	} else if err != redis.Nil {
		// Cache trouble just means a fresh fetch.
		s.logger.Warn("Reviews cache read failed", zap.Error(err))
	}

	resp, err := s.fetchFromPlaces(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(resp); err == nil {
		if err := s.redis.Set(ctx, reviewsCacheKey, payload, reviewsCacheTTL).Err(); err != nil {
			s.logger.Warn("Reviews cache write failed", zap.Error(err))
		}
	}

	return resp, nil
}

func (s *reviewsService) fetchFromPlaces(ctx context.Context) (*ReviewsResponse, error) {
	query := url.Values{
		"place_id": {s.cfg.PlaceID},
		"fields":   {"rating,user_ratings_total,reviews"},
		"key":      {s.cfg.APIKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build places request: %w", err)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places request failed: status %d", res.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
		Result struct {
			Rating           float64  `json:"rating"`
			UserRatingsTotal int      `json:"user_ratings_total"`
			Reviews          []Review `json:"reviews"`
		} `json:"result"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode places response: %w", err)
	}
	if body.Status != "OK" {
		return nil, fmt.Errorf("places request failed: %s", body.Status)
	}

	return &ReviewsResponse{
		Rating:      body.Result.Rating,
		ReviewCount: body.Result.UserRatingsTotal,
		Reviews:     body.Result.Reviews,
	}, nil
}
