package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/actuallystonmai/gift-recommendation-service/internal/domain"
)

// POST /gifts/suggest
func (h *Handler) SuggestGifts(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.Suggest(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	// Collaborator policy from the original surface: an empty (but
	// successful) annotate result is reported as not-found.
	if len(result.Recommendations) == 0 {
		writeError(w, http.StatusNotFound, "no_recommendations",
			"No gift recommendations found for the given criteria")
		return
	}

	writeJSON(w, http.StatusOK, buildResponse(result))
}

// POST /gifts/curate
func (h *Handler) CurateGifts(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.Curate(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buildResponse(result))
}

// POST /gifts/verified
func (h *Handler) SuggestVerifiedGifts(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.SuggestVerified(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buildResponse(result))
}

func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (domain.GiftRequest, bool) {
	var req domain.GiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return domain.GiftRequest{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return domain.GiftRequest{}, false
	}
	return req, true
}

// handleServiceError maps pipeline failures to a generic message; raw
// upstream payloads and stack traces never reach the client.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		writeError(w, http.StatusServiceUnavailable, "request_timeout",
			"Request timed out, please try again")
		return
	}
	h.log.Error("gift request failed", "path", r.URL.Path, "err", err)
	if domain.IsPipelineError(err) {
		writeError(w, http.StatusInternalServerError, "pipeline_failure",
			"Failed to generate gift recommendations")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
}

func buildResponse(result *domain.RecommendationResult) RecommendationResponse {
	recs := result.Recommendations
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	return RecommendationResponse{
		Recommendations: recs,
		SearchID:        result.SearchID,
		Metadata: RecommendationMeta{
			CacheHit:    result.CacheHit,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(recs),
		},
	}
}
