package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Sentinel values substituted when real marketplace data is unavailable.
const (
	PriceUnknown     = "Unknown"
	NoProductFound   = "No product found"
	NoImageAvailable = "No image available"

	CategoryGeneral    = "General"
	ReasonAISuggestion = "AI-generated suggestion"
)

// MaxRecommendations caps the final output list for every strategy.
const MaxRecommendations = 5

// Price marshals as a JSON number when the value is known and as the
// string "Unknown" when it is not.
type Price struct {
	Value float64
	Known bool
}

func KnownPrice(v float64) Price {
	return Price{Value: v, Known: true}
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Known {
		return json.Marshal(PriceUnknown)
	}
	return json.Marshal(p.Value)
}

func (p *Price) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*p = KnownPrice(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*p = KnownPrice(v)
		return nil
	}
	*p = Price{}
	return nil
}

type Recommendation struct {
	Name     string `json:"name"`
	Price    Price  `json:"price"`
	Category string `json:"category,omitempty"`
	Reason   string `json:"reason,omitempty"`
	URL      string `json:"url,omitempty"`
	Image    string `json:"image,omitempty"`
	Verified bool   `json:"verified"`
}

type RecommendationResult struct {
	Recommendations []Recommendation
	SearchID        string
	CacheHit        bool
}
