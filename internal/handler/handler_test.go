package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/gift-recommendation-service/internal/domain"
	"github.com/actuallystonmai/gift-recommendation-service/internal/logger"
)

type fakeService struct {
	result *domain.RecommendationResult
	err    error
	logs   []domain.SearchLog
}

func (f *fakeService) Suggest(context.Context, domain.GiftRequest) (*domain.RecommendationResult, error) {
	return f.result, f.err
}

func (f *fakeService) Curate(context.Context, domain.GiftRequest) (*domain.RecommendationResult, error) {
	return f.result, f.err
}

func (f *fakeService) SuggestVerified(context.Context, domain.GiftRequest) (*domain.RecommendationResult, error) {
	return f.result, f.err
}

func (f *fakeService) ListSearches(context.Context, int, int) ([]domain.SearchLog, int, error) {
	return f.logs, len(f.logs), f.err
}

const validBody = `{"interests":["tennis"],"occasion":"birthday","budget":100}`

func doRequest(h *Handler, method, path, body string, route http.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	route(rec, req)
	return rec
}

func TestSuggestGiftsOK(t *testing.T) {
	svc := &fakeService{result: &domain.RecommendationResult{
		Recommendations: []domain.Recommendation{{Name: "Tennis Racket", Price: domain.KnownPrice(54.99)}},
		SearchID:        "id-1",
	}}
	h := NewHandler(svc, logger.NewNop())

	rec := doRequest(h, http.MethodPost, "/gifts/suggest", validBody, h.SuggestGifts)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecommendationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "id-1", resp.SearchID)
	assert.Equal(t, 1, resp.Metadata.TotalCount)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "Tennis Racket", resp.Recommendations[0].Name)
}

func TestSuggestGiftsEmptyIsNotFound(t *testing.T) {
	svc := &fakeService{result: &domain.RecommendationResult{}}
	h := NewHandler(svc, logger.NewNop())

	rec := doRequest(h, http.MethodPost, "/gifts/suggest", validBody, h.SuggestGifts)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCurateGiftsEmptyIsOK(t *testing.T) {
	svc := &fakeService{result: &domain.RecommendationResult{}}
	h := NewHandler(svc, logger.NewNop())

	rec := doRequest(h, http.MethodPost, "/gifts/curate", validBody, h.CurateGifts)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RecommendationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Recommendations)
}

func TestSuggestGiftsValidation(t *testing.T) {
	h := NewHandler(&fakeService{}, logger.NewNop())

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"zero budget", `{"interests":["tennis"],"occasion":"birthday","budget":0}`},
		{"negative budget", `{"interests":["tennis"],"occasion":"birthday","budget":-5}`},
		{"empty interests", `{"interests":[],"occasion":"birthday","budget":100}`},
		{"missing occasion", `{"interests":["tennis"],"budget":100}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(h, http.MethodPost, "/gifts/suggest", tc.body, h.SuggestGifts)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSuggestGiftsPipelineFailureIsGeneric(t *testing.T) {
	svc := &fakeService{err: &domain.PipelineError{Msg: "reconcile annotate", Err: assertErr("raw upstream payload: secret")}}
	h := NewHandler(svc, logger.NewNop())

	rec := doRequest(h, http.MethodPost, "/gifts/suggest", validBody, h.SuggestGifts)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pipeline_failure", resp.Error)
	// Internal detail must never leak to the client.
	assert.NotContains(t, resp.Message, "secret")
}

func TestListSearchesInvalidParams(t *testing.T) {
	h := NewHandler(&fakeService{}, logger.NewNop())

	rec := doRequest(h, http.MethodGet, "/gifts/searches?page=0", "", h.ListSearches)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(h, http.MethodGet, "/gifts/searches?limit=9999", "", h.ListSearches)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSearchesOK(t *testing.T) {
	svc := &fakeService{logs: []domain.SearchLog{{ID: "abc"}}}
	h := NewHandler(svc, logger.NewNop())

	rec := doRequest(h, http.MethodGet, "/gifts/searches", "", h.ListSearches)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchLogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Searches, 1)
	assert.Equal(t, "abc", resp.Searches[0].ID)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
