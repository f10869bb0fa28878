package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/shelfline/shelfline/internal/core"
	"github.com/shelfline/shelfline/internal/metrics"
)

// maxTitleLength is the marketplace listing title cap.
const maxTitleLength = 80

// Suggestion sources.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

// PriceSuggestion is a recommended asking price with its rationale.
type PriceSuggestion struct {
	Price      float64 `json:"price"`
	Reasoning  string  `json:"reasoning,omitempty"`
	Confidence string  `json:"confidence,omitempty"`
	Source     string  `json:"source"`
}

// TitleSuggestion is an SEO-optimized listing title.
type TitleSuggestion struct {
	Title    string   `json:"title"`
	Keywords []string `json:"keywords,omitempty"`
	Score    float64  `json:"score"`
	Source   string   `json:"source"`
}

// Suggester produces listing suggestions, preferring the local model and
// degrading to rule-based estimates.
type Suggester struct {
	client  *Client
	prompts map[string]*Prompt
	logger  *logging.Logger
}

// NewSuggester builds a suggester. prompts may be nil to use built-in
// templates.
func NewSuggester(client *Client, prompts map[string]*Prompt, logger *logging.Logger) *Suggester {
	if prompts == nil {
		prompts = make(map[string]*Prompt)
	}
	return &Suggester{client: client, prompts: prompts, logger: logger}
}

var (
	pricePattern      = regexp.MustCompile(`(?im)^\s*PRICE:\s*\$?([0-9]+(?:\.[0-9]+)?)`)
	reasoningPattern  = regexp.MustCompile(`(?im)^\s*REASONING:\s*(.+)$`)
	confidencePattern = regexp.MustCompile(`(?im)^\s*CONFIDENCE:\s*(low|medium|high)`)
	titlePattern      = regexp.MustCompile(`(?im)^\s*TITLE:\s*(.+)$`)
	keywordsPattern   = regexp.MustCompile(`(?im)^\s*KEYWORDS:\s*(.+)$`)
	scorePattern      = regexp.MustCompile(`(?im)^\s*SCORE:\s*([0-9]+(?:\.[0-9]+)?)`)
)

// SuggestPrice asks the model for a price, falling back to the rule
// estimate when the daemon is down or the reply is unparseable. Model
// output is clamped to a sane multiple of cost.
func (s *Suggester) SuggestPrice(ctx context.Context, item *core.Item) (*PriceSuggestion, error) {
	if item == nil {
		return nil, fmt.Errorf("item is required")
	}

	raw, err := s.client.Generate(ctx, s.pricingPrompt(item))
	if err != nil {
		s.warn("assistant unavailable, using rule fallback", zap.Error(err))
		metrics.RecordAssistantRequest("price", false)
		return fallbackPrice(item), nil
	}

	suggestion := parsePriceResponse(raw)
	if suggestion == nil {
		s.warn("assistant reply unparseable, using rule fallback", zap.String("reply", truncate(raw, 200)))
		metrics.RecordAssistantRequest("price", false)
		return fallbackPrice(item), nil
	}

	suggestion.Price = clampPrice(suggestion.Price, item.Cost)
	metrics.RecordAssistantRequest("price", true)
	return suggestion, nil
}

// SuggestTitle asks the model for an optimized title, falling back to the
// trimmed original on failure. The result never exceeds the marketplace cap.
func (s *Suggester) SuggestTitle(ctx context.Context, item *core.Item) (*TitleSuggestion, error) {
	if item == nil {
		return nil, fmt.Errorf("item is required")
	}

	raw, err := s.client.Generate(ctx, s.titlePrompt(item))
	if err != nil {
		s.warn("assistant unavailable, using rule fallback", zap.Error(err))
		metrics.RecordAssistantRequest("title", false)
		return fallbackTitle(item), nil
	}

	suggestion := parseTitleResponse(raw)
	if suggestion == nil || suggestion.Title == "" {
		metrics.RecordAssistantRequest("title", false)
		return fallbackTitle(item), nil
	}

	if len(suggestion.Title) > maxTitleLength {
		suggestion.Title = strings.TrimSpace(suggestion.Title[:maxTitleLength])
	}
	metrics.RecordAssistantRequest("title", true)
	return suggestion, nil
}

func (s *Suggester) pricingPrompt(item *core.Item) string {
	return promptFor(s.prompts, pricingPromptSlug).Render(map[string]string{
		"title":     item.Title,
		"category":  displayCategory(item.Category),
		"condition": string(item.Condition),
		"cost":      strconv.FormatFloat(item.Cost, 'f', 2, 64),
		"notes":     item.Notes,
	})
}

func (s *Suggester) titlePrompt(item *core.Item) string {
	return promptFor(s.prompts, titlePromptSlug).Render(map[string]string{
		"title":     item.Title,
		"category":  displayCategory(item.Category),
		"condition": string(item.Condition),
		"notes":     item.Notes,
	})
}

// parsePriceResponse extracts the structured fields from a model reply.
// Returns nil when no price line is present.
func parsePriceResponse(raw string) *PriceSuggestion {
	m := pricePattern.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}

	price, err := strconv.ParseFloat(m[1], 64)
	if err != nil || price <= 0 {
		return nil
	}

	suggestion := &PriceSuggestion{Price: price, Source: SourceModel, Confidence: "medium"}
	if r := reasoningPattern.FindStringSubmatch(raw); r != nil {
		suggestion.Reasoning = strings.TrimSpace(r[1])
	}
	if c := confidencePattern.FindStringSubmatch(raw); c != nil {
		suggestion.Confidence = strings.ToLower(c[1])
	}
	return suggestion
}

// parseTitleResponse extracts the structured fields from a model reply.
func parseTitleResponse(raw string) *TitleSuggestion {
	m := titlePattern.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}

	suggestion := &TitleSuggestion{
		Title:  strings.TrimSpace(m[1]),
		Source: SourceModel,
	}

	if k := keywordsPattern.FindStringSubmatch(raw); k != nil {
		for _, part := range strings.Split(k[1], ",") {
			if kw := strings.TrimSpace(part); kw != "" {
				suggestion.Keywords = append(suggestion.Keywords, kw)
			}
		}
	}
	if sc := scorePattern.FindStringSubmatch(raw); sc != nil {
		if score, err := strconv.ParseFloat(sc[1], 64); err == nil {
			suggestion.Score = score
		}
	}
	if suggestion.Score == 0 {
		suggestion.Score = seoScore(suggestion.Title)
	}
	return suggestion
}

// clampPrice bounds a model price to [2x, 10x] of cost when cost is known.
// Hallucinated prices outside that band snap to the nearest bound.
func clampPrice(price, cost float64) float64 {
	if cost <= 0 {
		return roundCents(price)
	}

	low := cost * 2
	high := cost * 10
	if price < low {
		return roundCents(low)
	}
	if price > high {
		return roundCents(high)
	}
	return roundCents(price)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (s *Suggester) warn(msg string, fields ...zap.Field) {
	if s.logger != nil {
		s.logger.Warn(msg, fields...)
	}
}
