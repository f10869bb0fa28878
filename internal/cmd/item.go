package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfline/shelfline/internal/config"
	"github.com/shelfline/shelfline/internal/core"
	"github.com/shelfline/shelfline/internal/core/store"
	"github.com/shelfline/shelfline/internal/inventory"
	"github.com/shelfline/shelfline/internal/output"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage inventory items",
	Long:  "Add, list, inspect, sell, and remove inventory items.",
}

var itemAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add an item to inventory",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemAdd,
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List inventory items",
	RunE:  runItemList,
}

var itemShowCmd = &cobra.Command{
	Use:   "show <id|sku>",
	Short: "Show a single item in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemShow,
}

var itemSellCmd = &cobra.Command{
	Use:   "sell <id|sku>",
	Short: "Record a sale for an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemSell,
}

var itemRmCmd = &cobra.Command{
	Use:   "rm <id|sku>",
	Short: "Remove an item from inventory",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemRm,
}

var itemStatusCmd = &cobra.Command{
	Use:   "status <id|sku> <draft|ready|listed|sold|archived>",
	Short: "Change an item's status",
	Args:  cobra.ExactArgs(2),
	RunE:  runItemStatus,
}

func init() {
	rootCmd.AddCommand(itemCmd)
	itemCmd.AddCommand(itemAddCmd, itemListCmd, itemShowCmd, itemSellCmd, itemRmCmd, itemStatusCmd)

	itemAddCmd.Flags().String("sku", "", "SKU (generated from the title when empty)")
	itemAddCmd.Flags().String("category", "", "Category, e.g. trading_cards, video_games")
	itemAddCmd.Flags().String("condition", "", "Condition: new, like_new, good, fair, poor")
	itemAddCmd.Flags().Float64("cost", 0, "Acquisition cost")
	itemAddCmd.Flags().Float64("price", 0, "Asking price")
	itemAddCmd.Flags().Int("quantity", 1, "Quantity on hand")
	itemAddCmd.Flags().String("location", "", "Storage location, e.g. shelf-A3")
	itemAddCmd.Flags().String("notes", "", "Free-form notes")

	itemListCmd.Flags().String("status", "", "Filter by status")
	itemListCmd.Flags().String("category", "", "Filter by category")
	itemListCmd.Flags().String("search", "", "Search titles and SKUs")
	itemListCmd.Flags().Int("limit", 0, "Maximum rows")
	itemListCmd.Flags().StringP("format", "f", "table", "Output format: table, json, markdown")

	itemShowCmd.Flags().StringP("format", "f", "table", "Output format: table, json, markdown")

	itemSellCmd.Flags().Float64("price", 0, "Sale price (required)")
	itemSellCmd.Flags().Int("quantity", 1, "Quantity sold")
	itemSellCmd.Flags().Float64("shipping", 0, "Shipping cost paid by you")
	itemSellCmd.Flags().Float64("fees", 0, "Marketplace fees")
	itemSellCmd.Flags().String("platform", "", "Platform, e.g. ebay, local")
	itemSellCmd.Flags().String("buyer", "", "Buyer username")
	itemSellCmd.Flags().String("date", "", "Sale date (YYYY-MM-DD, defaults to today)")
	_ = itemSellCmd.MarkFlagRequired("price")
}

// resolveItem accepts either a numeric ID or a SKU.
func resolveItem(ctx context.Context, service *inventory.Service, ref string) (*core.Item, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		return service.GetItem(ctx, id)
	}
	return service.GetItemBySKU(ctx, ref)
}

func formatFlag(cmd *cobra.Command) (output.Format, error) {
	raw, _ := cmd.Flags().GetString("format")
	return output.ParseFormat(raw)
}

func runItemAdd(cmd *cobra.Command, args []string) error {
	title := strings.TrimSpace(args[0])
	if title == "" {
		return errors.New("title is required")
	}

	sku, _ := cmd.Flags().GetString("sku")
	category, _ := cmd.Flags().GetString("category")
	condition, _ := cmd.Flags().GetString("condition")
	cost, _ := cmd.Flags().GetFloat64("cost")
	price, _ := cmd.Flags().GetFloat64("price")
	quantity, _ := cmd.Flags().GetInt("quantity")
	location, _ := cmd.Flags().GetString("location")
	notes, _ := cmd.Flags().GetString("notes")

	return withService(cmd.Context(), func(ctx context.Context, _ *config.Config, service *inventory.Service) error {
		item := &core.Item{
			SKU:       strings.TrimSpace(sku),
			Title:     title,
			Category:  strings.TrimSpace(category),
			Condition: core.Condition(strings.TrimSpace(condition)),
			Cost:      cost,
			Price:     price,
			Quantity:  quantity,
			Location:  strings.TrimSpace(location),
			Notes:     notes,
		}
		created, err := service.CreateItem(ctx, item)
		if err != nil {
			return err
		}
		fmt.Printf("Added item %d (%s)\n", created.ID, created.SKU)
		return nil
	})
}

func runItemList(cmd *cobra.Command, args []string) error {
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}

	status, _ := cmd.Flags().GetString("status")
	category, _ := cmd.Flags().GetString("category")
	search, _ := cmd.Flags().GetString("search")
	limit, _ := cmd.Flags().GetInt("limit")

	return withService(cmd.Context(), func(ctx context.Context, _ *config.Config, service *inventory.Service) error {
		items, err := service.ListItems(ctx, store.ItemFilter{
			Status:   core.Status(strings.TrimSpace(status)),
			Category: strings.TrimSpace(category),
			Search:   strings.TrimSpace(search),
			Limit:    limit,
		})
		if err != nil {
			return err
		}
		rendered, err := output.Items(format, items)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	})
}

func runItemShow(cmd *cobra.Command, args []string) error {
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}

	return withService(cmd.Context(), func(ctx context.Context, _ *config.Config, service *inventory.Service) error {
		item, err := resolveItem(ctx, service, args[0])
		if err != nil {
			return err
		}
		rendered, err := output.ItemDetail(format, item)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	})
}

func runItemSell(cmd *cobra.Command, args []string) error {
	price, _ := cmd.Flags().GetFloat64("price")
	quantity, _ := cmd.Flags().GetInt("quantity")
	shipping, _ := cmd.Flags().GetFloat64("shipping")
	fees, _ := cmd.Flags().GetFloat64("fees")
	platform, _ := cmd.Flags().GetString("platform")
	buyer, _ := cmd.Flags().GetString("buyer")
	dateRaw, _ := cmd.Flags().GetString("date")

	saleDate := time.Now()
	if strings.TrimSpace(dateRaw) != "" {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(dateRaw))
		if err != nil {
			return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
		}
		saleDate = parsed
	}

	return withService(cmd.Context(), func(ctx context.Context, _ *config.Config, service *inventory.Service) error {
		item, err := resolveItem(ctx, service, args[0])
		if err != nil {
			return err
		}
		sale, err := service.MarkSold(ctx, item.ID, inventory.SaleInput{
			SalePrice:       price,
			Quantity:        quantity,
			ShippingCost:    shipping,
			MarketplaceFees: fees,
			Platform:        strings.TrimSpace(platform),
			BuyerUsername:   strings.TrimSpace(buyer),
			SaleDate:        saleDate,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Recorded sale %d for %q: %s (profit %.2f)\n",
			sale.ID, item.Title, sale.SaleDate.Format("2006-01-02"), sale.Profit())
		return nil
	})
}

func runItemRm(cmd *cobra.Command, args []string) error {
	return withService(cmd.Context(), func(ctx context.Context, _ *config.Config, service *inventory.Service) error {
		item, err := resolveItem(ctx, service, args[0])
		if err != nil {
			return err
		}
		if err := service.DeleteItem(ctx, item.ID); err != nil {
			return err
		}
		fmt.Printf("Removed item %d (%s)\n", item.ID, item.SKU)
		return nil
	})
}

func runItemStatus(cmd *cobra.Command, args []string) error {
	status := core.Status(strings.TrimSpace(args[1]))
	if !core.ValidStatus(status) {
		return fmt.Errorf("invalid status %q", args[1])
	}

	return withService(cmd.Context(), func(ctx context.Context, _ *config.Config, service *inventory.Service) error {
		item, err := resolveItem(ctx, service, args[0])
		if err != nil {
			return err
		}
		updated, err := service.UpdateStatus(ctx, item.ID, status)
		if err != nil {
			return err
		}
		fmt.Printf("Item %d is now %s\n", updated.ID, updated.Status)
		return nil
	})
}
