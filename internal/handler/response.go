package handler

import "github.com/actuallystonmai/gift-recommendation-service/internal/domain"

type RecommendationMeta struct {
	CacheHit    bool   `json:"cache_hit"`
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
}

type RecommendationResponse struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
	SearchID        string                  `json:"search_id,omitempty"`
	Metadata        RecommendationMeta      `json:"metadata"`
}

type SearchLogResponse struct {
	Searches []domain.SearchLog `json:"searches"`
	Page     int                `json:"page"`
	Limit    int                `json:"limit"`
	Total    int                `json:"total"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
