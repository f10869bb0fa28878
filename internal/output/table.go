package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/shelfline/shelfline/internal/core"
	"github.com/shelfline/shelfline/internal/inventory"
	"github.com/shelfline/shelfline/internal/market"
)

const maxTitleCell = 40

// Items renders an item listing in the requested format.
func Items(format Format, items []core.Item) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(items)
	case FormatMarkdown:
		return itemsMarkdown(items), nil
	default:
		return itemsTable(items), nil
	}
}

func itemsTable(items []core.Item) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"ID", "SKU", "Title", "Status", "Cost", "Price", "Net"})

	var totalCost, totalPrice float64
	for i := range items {
		item := &items[i]
		t.AppendRow(table.Row{
			item.ID,
			item.SKU,
			truncateCell(item.Title, maxTitleCell),
			string(item.Status),
			money(item.Cost),
			money(item.Price),
			money(item.NetProfit()),
		})
		totalCost += item.Cost
		totalPrice += item.Price
	}

	if len(items) > 0 {
		t.AppendFooter(table.Row{
			"", "", fmt.Sprintf("%d items", len(items)), "",
			money(totalCost), money(totalPrice), "",
		})
	}

	return t.Render()
}

// ItemDetail renders one item with its listing and suggestion fields.
func ItemDetail(format Format, item *core.Item) (string, error) {
	if item == nil {
		return "", nil
	}

	switch format {
	case FormatJSON:
		return renderJSON(item)
	case FormatMarkdown:
		return itemDetailMarkdown(item), nil
	default:
		return itemDetailTable(item), nil
	}
}

func itemDetailTable(item *core.Item) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendRow(table.Row{"ID", item.ID})
	t.AppendRow(table.Row{"SKU", item.SKU})
	t.AppendRow(table.Row{"Title", item.Title})
	t.AppendRow(table.Row{"Category", orDash(item.Category)})
	t.AppendRow(table.Row{"Condition", orDash(string(item.Condition))})
	t.AppendRow(table.Row{"Status", string(item.Status)})
	t.AppendRow(table.Row{"Quantity", item.Quantity})
	t.AppendRow(table.Row{"Cost", money(item.Cost)})
	t.AppendRow(table.Row{"Price", money(item.Price)})
	t.AppendRow(table.Row{"Est. fees", money(item.MarketplaceFees())})
	t.AppendRow(table.Row{"Net profit", money(item.NetProfit())})
	if item.ListingID != "" {
		t.AppendRow(table.Row{"Listing", item.ListingURL})
	}
	if item.SuggestedTitle != "" {
		t.AppendRow(table.Row{"Suggested title", truncateCell(item.SuggestedTitle, 60)})
	}
	if item.SuggestedPrice > 0 {
		t.AppendRow(table.Row{"Suggested price", money(item.SuggestedPrice)})
	}
	t.AppendRow(table.Row{"Added", shortDate(item.CreatedAt)})
	return t.Render()
}

// Sales renders sale records in the requested format.
func Sales(format Format, sales []core.Sale) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(sales)
	case FormatMarkdown:
		return salesMarkdown(sales), nil
	default:
		return salesTable(sales), nil
	}
}

func salesTable(sales []core.Sale) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"ID", "Date", "Item", "Platform", "Price", "Profit", "ROI"})

	var totalProfit float64
	for i := range sales {
		sale := &sales[i]
		t.AppendRow(table.Row{
			sale.ID,
			shortDate(sale.SaleDate),
			truncateCell(sale.ItemTitle, maxTitleCell),
			sale.Platform,
			money(sale.SalePrice),
			money(sale.Profit()),
			fmt.Sprintf("%.0f%%", sale.ROI()),
		})
		totalProfit += sale.Profit()
	}

	if len(sales) > 0 {
		t.AppendFooter(table.Row{
			"", "", fmt.Sprintf("%d sales", len(sales)), "", "", money(totalProfit), "",
		})
	}

	return t.Render()
}

// Summary renders the inventory summary in the requested format.
func Summary(format Format, summary *core.InventorySummary) (string, error) {
	if summary == nil {
		return "", nil
	}

	switch format {
	case FormatJSON:
		return renderJSON(summary)
	case FormatMarkdown:
		return summaryMarkdown(summary), nil
	default:
		return summaryTable(summary), nil
	}
}

func summaryTable(summary *core.InventorySummary) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendRow(table.Row{"Total items", summary.TotalItems})
	for _, status := range []core.Status{core.StatusDraft, core.StatusReady, core.StatusListed, core.StatusSold, core.StatusArchived} {
		if count := summary.ByStatus[status]; count > 0 {
			t.AppendRow(table.Row{"  " + string(status), count})
		}
	}
	t.AppendRow(table.Row{"Inventory cost", money(summary.TotalCost)})
	t.AppendRow(table.Row{"Inventory value", money(summary.TotalValue)})
	t.AppendRow(table.Row{"Realized profit", money(summary.RealizedProfit)})
	t.AppendRow(table.Row{"Expenses", money(summary.TotalExpenses)})
	return t.Render()
}

// UsageStats renders the marketplace API usage snapshot.
func UsageStats(format Format, stats market.UsageStats) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(stats)
	default:
		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.AppendRow(table.Row{"Requests", stats.TotalRequests})
		t.AppendRow(table.Row{"Succeeded", stats.SuccessCount})
		t.AppendRow(table.Row{"Failed", stats.ErrorCount})
		t.AppendRow(table.Row{"Requests/min", fmt.Sprintf("%.2f", stats.RequestsPerMinute)})
		t.AppendRow(table.Row{"Window", fmt.Sprintf("%ds", stats.WindowSeconds)})
		return t.Render(), nil
	}
}

// SyncResults renders marketplace push outcomes.
func SyncResults(format Format, results []inventory.SyncResult) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(results)
	default:
		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Item", "SKU", "Listing", "Result"})
		for _, r := range results {
			result := "listed"
			if r.Error != "" {
				result = r.Error
			}
			t.AppendRow(table.Row{r.ItemID, r.SKU, orDash(r.ListingID), result})
		}
		return t.Render(), nil
	}
}
