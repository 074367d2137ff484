package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/actuallystonmai/gift-recommendation-service/internal/domain"
	"github.com/actuallystonmai/gift-recommendation-service/internal/llm"
	"github.com/actuallystonmai/gift-recommendation-service/internal/logger"
)

const (
	candidateCap = 7
	temperature  = 0.7
)

// Generator asks the generative model for candidate product names.
type Generator struct {
	completer llm.Completer
	log       *logger.Logger
}

func New(completer llm.Completer, log *logger.Logger) *Generator {
	return &Generator{completer: completer, log: log}
}

// Generate returns at most 7 deduplicated candidate product names in model
// output order. A response that is not a valid JSON array degrades to an
// empty slice; only a transport failure of the completer is an error.
func (g *Generator) Generate(ctx context.Context, req domain.GiftRequest) ([]string, error) {
	raw, err := g.completer.Complete(ctx, buildPrompt(req), temperature)
	if err != nil {
		return nil, fmt.Errorf("generate candidates: %w", err)
	}

	names, ok := parseNames(raw)
	if !ok {
		g.log.Warn("failed to parse model response as JSON array", "response_len", len(raw))
		return nil, nil
	}
	return dedupe(names), nil
}

func buildPrompt(req domain.GiftRequest) string {
	age := "N/A"
	if req.Age > 0 {
		age = fmt.Sprintf("%d", req.Age)
	}
	relationship := req.Relationship
	if relationship == "" {
		relationship = "N/A"
	}
	preferences := req.Preferences
	if preferences == "" {
		preferences = "N/A"
	}

	var b strings.Builder
	b.WriteString("Generate 5-7 specific product names matching:\n")
	fmt.Fprintf(&b, "Age: %s\n", age)
	fmt.Fprintf(&b, "Interests: %s\n", strings.Join(req.Interests, ", "))
	fmt.Fprintf(&b, "Occasion: %s\n", req.Occasion)
	fmt.Fprintf(&b, "Relationship: %s\n", relationship)
	fmt.Fprintf(&b, "Additional Preferences: %s\n\n", preferences)
	fmt.Fprintf(&b, "Please keep in mind that the budget is $%.2f dollars only.\n\n", req.Budget)
	b.WriteString(`Return ONLY a JSON array like: ["Product 1", "Product 2"]`)
	return b.String()
}

// parseNames treats the model output strictly as data. Code fences are
// stripped before unmarshalling since some models wrap JSON in them.
func parseNames(raw string) ([]string, bool) {
	trimmed := stripCodeFence(raw)
	var names []string
	if err := json.Unmarshal([]byte(trimmed), &names); err != nil {
		return nil, false
	}
	return names, true
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

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, candidateCap)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
		if len(out) == candidateCap {
			break
		}
	}
	return out
}
