package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shelfline/shelfline/internal/config"
	"github.com/shelfline/shelfline/internal/inventory"
	"github.com/shelfline/shelfline/internal/observability"
	"github.com/shelfline/shelfline/internal/output"
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Marketplace account and listing sync",
	Long:  "Authenticate with the marketplace, push items as listings, and inspect API usage.",
}

var marketLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize shelfline with the marketplace",
	RunE:  runMarketLogin,
}

var marketLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget stored marketplace tokens",
	RunE:  runMarketLogout,
}

var marketSyncCmd = &cobra.Command{
	Use:   "sync [id|sku]",
	Short: "Push items to the marketplace as listings",
	Long:  "Push one item, or every ready item with --all, to the marketplace.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMarketSync,
}

var marketStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show marketplace API usage for the current window",
	RunE:  runMarketStats,
}

var marketOffersCmd = &cobra.Command{
	Use:   "offers",
	Short: "List marketplace offers",
	RunE:  runMarketOffers,
}

func init() {
	rootCmd.AddCommand(marketCmd)
	marketCmd.AddCommand(marketLoginCmd, marketLogoutCmd, marketSyncCmd, marketStatsCmd, marketOffersCmd)

	marketSyncCmd.Flags().Bool("all", false, "Push every ready item")
	marketSyncCmd.Flags().StringP("format", "f", "table", "Output format: table, json, markdown")
	marketStatsCmd.Flags().StringP("format", "f", "table", "Output format: table, json, markdown")
	marketOffersCmd.Flags().String("sku", "", "Filter offers by SKU")
}

func runMarketLogin(cmd *cobra.Command, args []string) error {
	return withService(cmd.Context(), func(ctx context.Context, cfg *config.Config, service *inventory.Service) error {
		_, oauth := buildMarket(cfg, service.Store())

		fmt.Println("Open this URL in your browser to authorize shelfline:")
		fmt.Println()
		fmt.Printf("  %s\n", oauth.AuthorizationURL())
		fmt.Println()
		fmt.Println("Waiting for the marketplace to redirect back...")

		if err := oauth.Login(ctx); err != nil {
			return err
		}
		fmt.Println("Logged in. Tokens stored.")
		return nil
	})
}

func runMarketLogout(cmd *cobra.Command, args []string) error {
	return withService(cmd.Context(), func(ctx context.Context, cfg *config.Config, service *inventory.Service) error {
		_, oauth := buildMarket(cfg, service.Store())
		if err := oauth.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	})
}

func runMarketSync(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	if !all && len(args) == 0 {
		return fmt.Errorf("an item id or --all is required")
	}

	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}

	return withService(cmd.Context(), func(ctx context.Context, cfg *config.Config, service *inventory.Service) error {
		client, _ := buildMarket(cfg, service.Store())
		syncer := inventory.NewSyncer(service, client, observability.CLILogger)

		var results []inventory.SyncResult
		if all {
			results, err = syncer.PushReady(ctx)
			if err != nil {
				return err
			}
		} else {
			item, err := resolveItem(ctx, service, args[0])
			if err != nil {
				return err
			}
			result, err := syncer.PushItem(ctx, item.ID)
			if err != nil {
				return err
			}
			results = []inventory.SyncResult{*result}
		}

		rendered, err := output.SyncResults(format, results)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	})
}

func runMarketStats(cmd *cobra.Command, args []string) error {
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}

	return withService(cmd.Context(), func(ctx context.Context, cfg *config.Config, service *inventory.Service) error {
		client, _ := buildMarket(cfg, service.Store())

		rendered, err := output.UsageStats(format, client.Stats())
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	})
}

func runMarketOffers(cmd *cobra.Command, args []string) error {
	sku, _ := cmd.Flags().GetString("sku")

	return withService(cmd.Context(), func(ctx context.Context, cfg *config.Config, service *inventory.Service) error {
		client, _ := buildMarket(cfg, service.Store())

		offers, err := client.ListOffers(ctx, strings.TrimSpace(sku))
		if err != nil {
			return err
		}
		if len(offers) == 0 {
			fmt.Println("No offers found.")
			return nil
		}
		for _, offer := range offers {
			fmt.Printf("%s  sku=%s  listing=%s  qty=%d\n",
				offer.OfferID, offer.SKU, orDefault(offer.ListingID, "-"), offer.AvailableQuantity)
		}
		return nil
	})
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
