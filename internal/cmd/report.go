package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shelfline/shelfline/internal/config"
	"github.com/shelfline/shelfline/internal/core/store"
	"github.com/shelfline/shelfline/internal/inventory"
	"github.com/shelfline/shelfline/internal/output"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Inventory and profit summary",
	RunE:  runSummary,
}

var salesCmd = &cobra.Command{
	Use:   "sales",
	Short: "List recorded sales",
	RunE:  runSales,
}

func init() {
	rootCmd.AddCommand(summaryCmd, salesCmd)

	summaryCmd.Flags().StringP("format", "f", "table", "Output format: table, json, markdown")
	salesCmd.Flags().StringP("format", "f", "table", "Output format: table, json, markdown")
	salesCmd.Flags().String("platform", "", "Filter by platform")
	salesCmd.Flags().Int("limit", 0, "Maximum rows")
}

func runSummary(cmd *cobra.Command, args []string) error {
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}

	return withService(cmd.Context(), func(ctx context.Context, _ *config.Config, service *inventory.Service) error {
		summary, err := service.Summary(ctx)
		if err != nil {
			return err
		}
		rendered, err := output.Summary(format, summary)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	})
}

func runSales(cmd *cobra.Command, args []string) error {
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}

	platform, _ := cmd.Flags().GetString("platform")
	limit, _ := cmd.Flags().GetInt("limit")

	return withService(cmd.Context(), func(ctx context.Context, _ *config.Config, service *inventory.Service) error {
		sales, err := service.ListSales(ctx, store.SaleFilter{
			Platform: strings.TrimSpace(platform),
			Limit:    limit,
		})
		if err != nil {
			return err
		}
		rendered, err := output.Sales(format, sales)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	})
}
