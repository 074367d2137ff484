package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/actuallystonmai/gift-recommendation-service/internal/domain"
	"github.com/actuallystonmai/gift-recommendation-service/internal/logger"
)

// GiftService is the reconciler boundary the HTTP layer calls into.
type GiftService interface {
	Suggest(ctx context.Context, req domain.GiftRequest) (*domain.RecommendationResult, error)
	Curate(ctx context.Context, req domain.GiftRequest) (*domain.RecommendationResult, error)
	SuggestVerified(ctx context.Context, req domain.GiftRequest) (*domain.RecommendationResult, error)
	ListSearches(ctx context.Context, page, limit int) ([]domain.SearchLog, int, error)
}

type Handler struct {
	service  GiftService
	validate *validator.Validate
	log      *logger.Logger
}

func NewHandler(svc GiftService, log *logger.Logger) *Handler {
	return &Handler{
		service:  svc,
		validate: validator.New(),
		log:      log,
	}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}
