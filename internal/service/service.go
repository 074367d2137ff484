package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/actuallystonmai/gift-recommendation-service/internal/cache"
	"github.com/actuallystonmai/gift-recommendation-service/internal/domain"
	"github.com/actuallystonmai/gift-recommendation-service/internal/logger"
	"github.com/actuallystonmai/gift-recommendation-service/internal/marketplace"
)

// selectPoolSize bounds how many raw listings are fetched per candidate
// before the selection step re-ranks them.
const selectPoolSize = 25

const (
	strategyAnnotate = "annotate"
	strategySelect   = "select"
	strategyVerified = "verified"
)

// CandidateGenerator produces candidate product names for a request.
type CandidateGenerator interface {
	Generate(ctx context.Context, req domain.GiftRequest) ([]string, error)
}

// Searcher is the keyed marketplace adapter. It never returns an error;
// every upstream failure is observably "no results".
type Searcher interface {
	Top(ctx context.Context, query string, budget float64) (domain.Listing, bool)
	Raw(ctx context.Context, query string, budget float64, limit int) []domain.Listing
}

// SignedSearcher is the stricter marketplace sibling. It surfaces errors,
// which the reconciler maps to its generator-only fallback.
type SignedSearcher interface {
	Search(ctx context.Context, query string, maxPrice float64) ([]domain.Listing, error)
}

// Chooser picks one listing per candidate given a free-text preference.
type Chooser interface {
	Choose(ctx context.Context, preference string, listings []domain.Listing) (domain.Listing, bool)
}

// ResponseCache caches finished recommendation lists per request key.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]domain.Recommendation, bool, error)
	Set(ctx context.Context, key string, recs []domain.Recommendation) error
}

// SearchLogStore persists and lists audit records.
type SearchLogStore interface {
	CreateSearchLog(ctx context.Context, entry *domain.SearchLog) error
	ListSearchLogs(ctx context.Context, page, limit int) ([]domain.SearchLog, error)
	CountSearchLogs(ctx context.Context) (int, error)
}

type Service struct {
	generator    CandidateGenerator
	market       Searcher
	signed       SignedSearcher
	selector     Chooser
	cache        ResponseCache
	repo         SearchLogStore
	modelVersion string
	log          *logger.Logger
}

func NewService(gen CandidateGenerator, market Searcher, signed SignedSearcher, chooser Chooser,
	c ResponseCache, repo SearchLogStore, modelVersion string, log *logger.Logger) *Service {
	return &Service{
		generator:    gen,
		market:       market,
		signed:       signed,
		selector:     chooser,
		cache:        c,
		repo:         repo,
		modelVersion: modelVersion,
		log:          log,
	}
}

// Suggest runs the verify-then-annotate strategy: every generated
// candidate survives, decorated with real listing data or with sentinel
// values when the marketplace had nothing for it.
func (s *Service) Suggest(ctx context.Context, req domain.GiftRequest) (*domain.RecommendationResult, error) {
	return s.run(ctx, strategyAnnotate, req, s.annotate)
}

// Curate runs the verify-then-select strategy: candidates without any
// marketplace listing are dropped, the rest go through the selection
// step. The drop (rather than pad) is deliberate for this strategy.
func (s *Service) Curate(ctx context.Context, req domain.GiftRequest) (*domain.RecommendationResult, error) {
	return s.run(ctx, strategySelect, req, s.curate)
}

// SuggestVerified runs against the signed marketplace sibling. Candidates
// whose search failed fall back to generator-only items; if every search
// fails the whole set is fallback items.
func (s *Service) SuggestVerified(ctx context.Context, req domain.GiftRequest) (*domain.RecommendationResult, error) {
	return s.run(ctx, strategyVerified, req, s.verified)
}

// ListSearches returns persisted audit records plus the total count.
func (s *Service) ListSearches(ctx context.Context, page, limit int) ([]domain.SearchLog, int, error) {
	logs, err := s.repo.ListSearchLogs(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountSearchLogs(ctx)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

type reconcileFunc func(ctx context.Context, req domain.GiftRequest) ([]domain.Recommendation, error)

func (s *Service) run(ctx context.Context, strategy string, req domain.GiftRequest, reconcile reconcileFunc) (*domain.RecommendationResult, error) {
	start := time.Now()
	key := cache.Key(strategy, req)

	cached, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache get failed", "strategy", strategy, "err", err)
	}
	if found {
		return &domain.RecommendationResult{Recommendations: cached, CacheHit: true}, nil
	}

	recs, err := reconcile(ctx, req)
	if err != nil {
		return nil, &domain.PipelineError{Msg: "reconcile " + strategy, Err: err}
	}

	searchID := s.persist(ctx, req, recs, time.Since(start))

	if cacheErr := s.cache.Set(ctx, key, recs); cacheErr != nil {
		s.log.Warn("cache set failed", "strategy", strategy, "err", cacheErr)
	}

	return &domain.RecommendationResult{Recommendations: recs, SearchID: searchID}, nil
}

// persist writes the audit record after the pipeline completed. A failed
// write is logged and yields an empty search id; the already-computed
// recommendations are returned unchanged either way.
func (s *Service) persist(ctx context.Context, req domain.GiftRequest, recs []domain.Recommendation, elapsed time.Duration) string {
	params, err := json.Marshal(req)
	if err != nil {
		s.log.Warn("marshal search params", "err", err)
		return ""
	}
	payload, err := json.Marshal(recs)
	if err != nil {
		s.log.Warn("marshal recommendations", "err", err)
		return ""
	}

	entry := &domain.SearchLog{
		ID:               uuid.NewString(),
		SearchParams:     params,
		Recommendations:  payload,
		ModelVersion:     s.modelVersion,
		ProcessingTimeMs: elapsed.Milliseconds(),
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.repo.CreateSearchLog(ctx, entry); err != nil {
		s.log.Warn("persist search log failed", "err", err)
		return ""
	}
	return entry.ID
}

func (s *Service) annotate(ctx context.Context, req domain.GiftRequest) ([]domain.Recommendation, error) {
	names, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	recs := make([]domain.Recommendation, 0, len(names))
	for _, name := range names {
		recs = append(recs, s.annotateOne(ctx, name, req.Budget))
	}
	return finalize(recs), nil
}

func (s *Service) annotateOne(ctx context.Context, name string, budget float64) domain.Recommendation {
	listing, ok := s.market.Top(ctx, name, budget)
	if !ok {
		return domain.Recommendation{
			Name:  name,
			Price: domain.Price{},
			URL:   domain.NoProductFound,
			Image: domain.NoImageAvailable,
		}
	}
	return domain.Recommendation{
		Name:     name,
		Price:    domain.KnownPrice(listing.Price),
		URL:      listing.URL,
		Image:    listing.Image,
		Verified: true,
	}
}

func (s *Service) curate(ctx context.Context, req domain.GiftRequest) ([]domain.Recommendation, error) {
	names, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	recs := make([]domain.Recommendation, 0, len(names))
	for _, name := range names {
		listings := s.market.Raw(ctx, name, req.Budget, selectPoolSize)
		if len(listings) == 0 {
			continue
		}
		marketplace.SortByRating(listings)

		chosen := listings[0]
		if len(listings) > 1 {
			picked, ok := s.selector.Choose(ctx, req.Preferences, listings)
			if !ok {
				continue
			}
			chosen = picked
		}

		recs = append(recs, domain.Recommendation{
			Name:     chosen.Title,
			Price:    domain.KnownPrice(chosen.Price),
			URL:      chosen.URL,
			Image:    chosen.Image,
			Verified: true,
		})
	}
	return finalize(recs), nil
}

func (s *Service) verified(ctx context.Context, req domain.GiftRequest) ([]domain.Recommendation, error) {
	names, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	type candidateResult struct {
		rec      domain.Recommendation
		fallback bool
	}

	results := make([]candidateResult, 0, len(names))
	verifiedNames := make(map[string]struct{}, len(names))

	for _, name := range names {
		listings, err := s.signed.Search(ctx, name, req.Budget)
		if err != nil {
			s.log.Warn("signed marketplace search failed", "query", name, "err", err)
		}
		if err != nil || len(listings) == 0 {
			results = append(results, candidateResult{rec: fallbackItem(name), fallback: true})
			continue
		}
		top := listings[0]
		verifiedNames[top.Title] = struct{}{}
		results = append(results, candidateResult{rec: domain.Recommendation{
			Name:     top.Title,
			Price:    domain.KnownPrice(top.Price),
			Category: top.Category,
			URL:      top.URL,
			Image:    top.Image,
			Verified: true,
		}})
	}

	// A generator-only suggestion is included only when no verified
	// listing already carries the identical name.
	recs := make([]domain.Recommendation, 0, len(results))
	for _, r := range results {
		if r.fallback {
			if _, dup := verifiedNames[r.rec.Name]; dup {
				continue
			}
		}
		recs = append(recs, r.rec)
	}
	return finalize(recs), nil
}

func fallbackItem(name string) domain.Recommendation {
	return domain.Recommendation{
		Name:     name,
		Price:    domain.KnownPrice(0),
		Category: domain.CategoryGeneral,
		Reason:   domain.ReasonAISuggestion,
	}
}

// finalize drops individually malformed items and truncates the list.
// One bad item never fails the whole request.
func finalize(recs []domain.Recommendation) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, domain.MaxRecommendations)
	for _, r := range recs {
		if r.Name == "" {
			continue
		}
		out = append(out, r)
		if len(out) == domain.MaxRecommendations {
			break
		}
	}
	return out
}
