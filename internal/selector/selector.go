package selector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/actuallystonmai/gift-recommendation-service/internal/domain"
	"github.com/actuallystonmai/gift-recommendation-service/internal/llm"
	"github.com/actuallystonmai/gift-recommendation-service/internal/logger"
)

const temperature = 0.7

// Selector asks the generative model to pick the single best listing for
// a free-text preference. Absence is a normal outcome: no failure of this
// stage ever escalates to an error.
type Selector struct {
	completer llm.Completer
	log       *logger.Logger
}

func New(completer llm.Completer, log *logger.Logger) *Selector {
	return &Selector{completer: completer, log: log}
}

// Choose returns the model's pick, normalized: a one-element array counts
// as its sole element, an empty array or unparseable response as absent.
func (s *Selector) Choose(ctx context.Context, preference string, listings []domain.Listing) (domain.Listing, bool) {
	if len(listings) == 0 {
		return domain.Listing{}, false
	}

	raw, err := s.completer.Complete(ctx, buildPrompt(preference, listings), temperature)
	if err != nil {
		s.log.Warn("selection request failed", "err", err)
		return domain.Listing{}, false
	}

	chosen, ok := parseChoice(raw)
	if !ok {
		s.log.Warn("failed to parse selection response", "response_len", len(raw))
		return domain.Listing{}, false
	}
	return chosen, true
}

func buildPrompt(preference string, listings []domain.Listing) string {
	encoded, _ := json.Marshal(listings)
	return fmt.Sprintf(`You are an intelligent product selector. Given a list of products: %s in JSON format and a user's
gift preferences: %s, select the single best product that matches the criteria.
Instructions:
Analyze the list of products based on the provided criteria, such as price range, brand, rating, and other factors given
in the user's request.
Choose the product that best matches all or most of the criteria.
If multiple products are equally suitable, select the one with the highest rating.
Return the selected product in JSON format with the following keys:
product_title
product_price
product_url
product_photo

YOUR RESPONSE DOESN'T NEED TO INCLUDE EXPLANATION OR JUSTIFICATION. ONLY WRITE SELECTED PRODUCT IN JSON FORMAT LIKE BELOW:
{
    "product_title": "Product 1",
    "product_price": "100.00",
    "product_url": "https://www.example.com/product1",
    "product_photo": "https://www.example.com/product1.jpg"
}`, encoded, preference)
}

type chosenPayload struct {
	Title string       `json:"product_title"`
	Price domain.Price `json:"product_price"`
	URL   string       `json:"product_url"`
	Photo string       `json:"product_photo"`
}

func parseChoice(raw string) (domain.Listing, bool) {
	trimmed := strings.TrimSpace(stripCodeFence(raw))

	var single chosenPayload
	if err := json.Unmarshal([]byte(trimmed), &single); err == nil {
		return toListing(single)
	}

	// Some model runs return a list instead of one object; take its
	// first element, and treat an empty list as absent.
	var many []chosenPayload
	if err := json.Unmarshal([]byte(trimmed), &many); err == nil {
		if len(many) == 0 {
			return domain.Listing{}, false
		}
		return toListing(many[0])
	}

	return domain.Listing{}, false
}

func toListing(p chosenPayload) (domain.Listing, bool) {
	if p.Title == "" {
		return domain.Listing{}, false
	}
	return domain.Listing{
		Title: p.Title,
		Price: p.Price.Value,
		URL:   p.URL,
		Image: p.Photo,
	}, true
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
