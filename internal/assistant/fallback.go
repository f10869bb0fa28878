package assistant

import (
	"fmt"
	"math"
	"strings"

	"github.com/shelfline/shelfline/internal/core"
)

// categoryMultipliers estimate typical resale markup over cost per category.
var categoryMultipliers = map[string]float64{
	"trading_cards": 4.0,
	"electronics":   2.2,
	"clothing":      3.0,
	"shoes":         2.8,
	"toys":          3.5,
	"books":         2.5,
	"collectibles":  4.5,
	"home":          2.0,
}

const defaultCategoryMultiplier = 2.5

// conditionMultipliers scale the category estimate by physical grade.
var conditionMultipliers = map[core.Condition]float64{
	core.ConditionNew:     1.25,
	core.ConditionLikeNew: 1.1,
	core.ConditionGood:    1.0,
	core.ConditionFair:    0.75,
	core.ConditionPoor:    0.5,
}

// fallbackPrice computes a deterministic rule-based estimate from cost,
// category, and condition. Returns zero when the item has no recorded cost.
func fallbackPrice(item *core.Item) *PriceSuggestion {
	if item == nil || item.Cost <= 0 {
		return &PriceSuggestion{
			Source:     SourceFallback,
			Confidence: "low",
			Reasoning:  "no cost recorded, unable to estimate a price",
		}
	}

	multiplier := defaultCategoryMultiplier
	if m, ok := categoryMultipliers[strings.ToLower(item.Category)]; ok {
		multiplier = m
	}
	if m, ok := conditionMultipliers[item.Condition]; ok {
		multiplier *= m
	}

	price := roundCents(item.Cost * multiplier)
	return &PriceSuggestion{
		Price:      price,
		Source:     SourceFallback,
		Confidence: "low",
		Reasoning: fmt.Sprintf("rule-based estimate: %.1fx markup on $%.2f cost for %s in %s condition",
			multiplier, item.Cost, displayCategory(item.Category), string(item.Condition)),
	}
}

// fallbackTitle trims and scores the existing title without rewriting it.
func fallbackTitle(item *core.Item) *TitleSuggestion {
	title := strings.TrimSpace(item.Title)
	if len(title) > maxTitleLength {
		title = strings.TrimSpace(title[:maxTitleLength])
	}

	return &TitleSuggestion{
		Title:  title,
		Score:  seoScore(title),
		Source: SourceFallback,
	}
}

// seoScore is a crude keyword-density heuristic: longer titles with more
// distinct words score higher, up to the length cap.
func seoScore(title string) float64 {
	words := strings.Fields(title)
	if len(words) == 0 {
		return 0
	}

	distinct := make(map[string]struct{}, len(words))
	for _, w := range words {
		distinct[strings.ToLower(w)] = struct{}{}
	}

	lengthScore := math.Min(float64(len(title))/maxTitleLength, 1.0) * 50
	wordScore := math.Min(float64(len(distinct))/10.0, 1.0) * 50
	return roundCents(lengthScore + wordScore)
}

func displayCategory(category string) string {
	if category == "" {
		return "uncategorized"
	}
	return strings.ReplaceAll(category, "_", " ")
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
