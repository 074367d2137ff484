package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/actuallystonmai/gift-recommendation-service/internal/domain"
	"github.com/actuallystonmai/gift-recommendation-service/internal/logger"
)

// priceWindowRatio anchors the query's lower bound at 0.8x the budget
// ceiling. The upper bound is the budget itself.
const priceWindowRatio = 0.8

// Client queries the keyed product-search service. Every failure mode
// (transport error, non-2xx status, malformed body) degrades to an empty
// result; no error ever escapes this layer.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	host       string
	country    string
	log        *logger.Logger
}

func NewClient(apiKey, host, country string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://" + host + "/search",
		apiKey:     apiKey,
		host:       host,
		country:    country,
		log:        log,
	}
}

// Top returns the single highest-rated listing for the query, or false
// when the search produced nothing.
func (c *Client) Top(ctx context.Context, query string, budget float64) (domain.Listing, bool) {
	listings := c.TopN(ctx, query, budget, 1)
	if len(listings) == 0 {
		return domain.Listing{}, false
	}
	return listings[0], true
}

// TopN returns up to n listings sorted by descending rating.
func (c *Client) TopN(ctx context.Context, query string, budget float64, n int) []domain.Listing {
	listings := c.Raw(ctx, query, budget, 0)
	SortByRating(listings)
	if len(listings) > n {
		listings = listings[:n]
	}
	return listings
}

// Raw returns listings in upstream order, unsorted, for callers that
// re-rank later. limit <= 0 means no truncation.
func (c *Client) Raw(ctx context.Context, query string, budget float64, limit int) []domain.Listing {
	listings := c.search(ctx, query, budget)
	if limit > 0 && len(listings) > limit {
		listings = listings[:limit]
	}
	return listings
}

func (c *Client) search(ctx context.Context, query string, budget float64) []domain.Listing {
	params := url.Values{}
	params.Set("query", query)
	params.Set("min_price", formatPrice(priceWindowRatio*budget))
	params.Set("max_price", formatPrice(budget))
	params.Set("country", c.country)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		c.log.Warn("marketplace request build failed", "query", query, "err", err)
		return nil
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("marketplace search failed", "query", query, "err", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("marketplace search returned non-success status", "query", query, "status", resp.StatusCode)
		return nil
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Warn("marketplace response decode failed", "query", query, "err", err)
		return nil
	}

	listings := make([]domain.Listing, 0, len(payload.Data.Products))
	for _, p := range payload.Data.Products {
		listing := domain.Listing{
			Title:  p.Title,
			Price:  parsePrice(p.Price),
			URL:    p.URL,
			Image:  p.Photo,
			Rating: parseRating(p.StarRating),
		}
		if !listing.Usable() {
			continue
		}
		listings = append(listings, listing)
	}
	return listings
}

// SortByRating orders listings by descending rating. Listings with a
// missing rating were already normalized to 0.0 and sort last.
func SortByRating(listings []domain.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].Rating > listings[j].Rating
	})
}

type searchResponse struct {
	Data struct {
		Products []productPayload `json:"products"`
	} `json:"data"`
}

type productPayload struct {
	Title      string          `json:"product_title"`
	Price      string          `json:"product_price"`
	URL        string          `json:"product_url"`
	Photo      string          `json:"product_photo"`
	StarRating json.RawMessage `json:"product_star_rating"`
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func parsePrice(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// parseRating accepts the rating as a JSON string or number; anything
// else counts as 0.0 so the listing sorts last instead of being dropped.
func parseRating(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
