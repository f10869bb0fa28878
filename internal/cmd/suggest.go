package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shelfline/shelfline/internal/config"
	"github.com/shelfline/shelfline/internal/inventory"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Listing suggestions from the local assistant",
	Long: `Generate pricing and title suggestions for an item.

Suggestions come from a local Ollama model when one is running; otherwise a
rule-based estimate is used. Pass --apply to save the suggestion on the item.`,
}

var suggestPriceCmd = &cobra.Command{
	Use:   "price <id|sku>",
	Short: "Suggest an asking price",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggestPrice,
}

var suggestTitleCmd = &cobra.Command{
	Use:   "title <id|sku>",
	Short: "Suggest an SEO-optimized listing title",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggestTitle,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.AddCommand(suggestPriceCmd, suggestTitleCmd)

	suggestPriceCmd.Flags().Bool("apply", false, "Save the suggested price on the item")
	suggestTitleCmd.Flags().Bool("apply", false, "Save the suggested title on the item")
}

func runSuggestPrice(cmd *cobra.Command, args []string) error {
	apply, _ := cmd.Flags().GetBool("apply")

	return withService(cmd.Context(), func(ctx context.Context, cfg *config.Config, service *inventory.Service) error {
		suggester, err := newSuggester(cfg)
		if err != nil {
			return err
		}

		item, err := resolveItem(ctx, service, args[0])
		if err != nil {
			return err
		}

		suggestion, err := suggester.SuggestPrice(ctx, item)
		if err != nil {
			return err
		}

		fmt.Printf("Suggested price for %q: $%.2f (%s)\n", item.Title, suggestion.Price, suggestion.Source)
		if suggestion.Confidence != "" {
			fmt.Printf("Confidence: %s\n", suggestion.Confidence)
		}
		if suggestion.Reasoning != "" {
			fmt.Printf("Reasoning: %s\n", suggestion.Reasoning)
		}

		if apply {
			item.SuggestedPrice = suggestion.Price
			if _, err := service.UpdateItem(ctx, item); err != nil {
				return err
			}
			fmt.Printf("Saved suggested price on item %d\n", item.ID)
		}
		return nil
	})
}

func runSuggestTitle(cmd *cobra.Command, args []string) error {
	apply, _ := cmd.Flags().GetBool("apply")

	return withService(cmd.Context(), func(ctx context.Context, cfg *config.Config, service *inventory.Service) error {
		suggester, err := newSuggester(cfg)
		if err != nil {
			return err
		}

		item, err := resolveItem(ctx, service, args[0])
		if err != nil {
			return err
		}

		suggestion, err := suggester.SuggestTitle(ctx, item)
		if err != nil {
			return err
		}

		fmt.Printf("Suggested title for item %d (%s):\n  %s\n", item.ID, suggestion.Source, suggestion.Title)
		if len(suggestion.Keywords) > 0 {
			fmt.Printf("Keywords: %s\n", strings.Join(suggestion.Keywords, ", "))
		}
		fmt.Printf("SEO score: %.0f\n", suggestion.Score)

		if apply {
			item.SuggestedTitle = suggestion.Title
			item.SEOScore = suggestion.Score
			if _, err := service.UpdateItem(ctx, item); err != nil {
				return err
			}
			fmt.Printf("Saved suggested title on item %d\n", item.ID)
		}
		return nil
	})
}
