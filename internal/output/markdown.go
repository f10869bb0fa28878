package output

import (
	"fmt"
	"strings"

	"github.com/shelfline/shelfline/internal/core"
)

func itemsMarkdown(items []core.Item) string {
	var sb strings.Builder
	sb.WriteString("| ID | SKU | Title | Status | Cost | Price | Net |\n")
	sb.WriteString("|----|-----|-------|--------|------|-------|-----|\n")
	for i := range items {
		item := &items[i]
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s | %s |\n",
			item.ID,
			escapeMarkdownCell(item.SKU),
			escapeMarkdownCell(truncateCell(item.Title, maxTitleCell)),
			string(item.Status),
			money(item.Cost),
			money(item.Price),
			money(item.NetProfit()),
		))
	}
	return sb.String()
}

func itemDetailMarkdown(item *core.Item) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownCell(item.Title)))
	sb.WriteString(fmt.Sprintf("- **SKU**: %s\n", escapeMarkdownCell(item.SKU)))
	sb.WriteString(fmt.Sprintf("- **Status**: %s\n", string(item.Status)))
	sb.WriteString(fmt.Sprintf("- **Cost**: %s\n", money(item.Cost)))
	sb.WriteString(fmt.Sprintf("- **Price**: %s\n", money(item.Price)))
	sb.WriteString(fmt.Sprintf("- **Net profit**: %s\n", money(item.NetProfit())))
	if item.ListingURL != "" {
		sb.WriteString(fmt.Sprintf("- **Listing**: %s\n", item.ListingURL))
	}
	return sb.String()
}

func salesMarkdown(sales []core.Sale) string {
	var sb strings.Builder
	sb.WriteString("| ID | Date | Item | Platform | Price | Profit |\n")
	sb.WriteString("|----|------|------|----------|-------|--------|\n")
	for i := range sales {
		sale := &sales[i]
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			sale.ID,
			shortDate(sale.SaleDate),
			escapeMarkdownCell(truncateCell(sale.ItemTitle, maxTitleCell)),
			escapeMarkdownCell(sale.Platform),
			money(sale.SalePrice),
			money(sale.Profit()),
		))
	}
	return sb.String()
}

func summaryMarkdown(summary *core.InventorySummary) string {
	var sb strings.Builder
	sb.WriteString("## Inventory summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Total items**: %d\n", summary.TotalItems))
	sb.WriteString(fmt.Sprintf("- **Inventory cost**: %s\n", money(summary.TotalCost)))
	sb.WriteString(fmt.Sprintf("- **Inventory value**: %s\n", money(summary.TotalValue)))
	sb.WriteString(fmt.Sprintf("- **Realized profit**: %s\n", money(summary.RealizedProfit)))
	sb.WriteString(fmt.Sprintf("- **Expenses**: %s\n", money(summary.TotalExpenses)))
	return sb.String()
}

func escapeMarkdownCell(value string) string {
	value = strings.ReplaceAll(value, "|", "\\|")
	value = strings.ReplaceAll(value, "\n", " ")
	return value
}
