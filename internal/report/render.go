package report

import (
	"fmt"
	"strings"
)

// Fixed-width text layout consumed by the export collaborator: names
// padded to 20, quantities to 10, money with a currency marker and two
// decimals, dates as YYYY-MM-DD.

const (
	currencyMarker = "K"
	ruleWidth      = 80
)

func appendHeader(b *strings.Builder, title string) {
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", ruleWidth))
	b.WriteString("\n\n")
}

func appendColumns(b *strings.Builder, format string, columns ...any) {
	fmt.Fprintf(b, format, columns...)
	b.WriteString(strings.Repeat("-", ruleWidth))
	b.WriteString("\n")
}

// RenderSales renders a sales report under the given title.
func RenderSales(title string, rep SalesReport) string {
	var b strings.Builder
	appendHeader(&b, title)
	appendColumns(&b, "%-20s %-10s %-12s %-12s %-12s\n", "Medicine", "Quantity", "Price/Unit", "Total", "Date")

	for _, line := range rep.Lines {
		fmt.Fprintf(&b, "%-20s %-10d %s%-11.2f %s%-11.2f %-12s\n",
			line.MedicineName, line.QuantitySold,
			currencyMarker, line.UnitPrice,
			currencyMarker, line.TotalAmount,
			line.SaleDate)
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", ruleWidth))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total Items Sold: %d\n", rep.TotalItems)
	fmt.Fprintf(&b, "Total Revenue: %s%.2f\n", currencyMarker, rep.TotalRevenue)
	b.WriteString(strings.Repeat("=", ruleWidth))
	return b.String()
}

// RenderInventory renders the current stock report.
func RenderInventory(rep InventoryReport) string {
	var b strings.Builder
	appendHeader(&b, "Inventory Report")
	appendColumns(&b, "%-20s %-15s %-15s %-10s %-10s\n", "Medicine", "Batch Number", "Expiry Date", "Quantity", "Price")

	for _, med := range rep.Lines {
		fmt.Fprintf(&b, "%-20s %-15s %-15s %-10d %s%-9.2f\n",
			med.Name, med.Batch, med.Expiry, med.Quantity, currencyMarker, med.UnitPrice)
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", ruleWidth))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total Items in Stock: %d\n", rep.TotalItems)
	fmt.Fprintf(&b, "Total Inventory Value: %s%.2f\n", currencyMarker, rep.TotalValue)
	b.WriteString(strings.Repeat("=", ruleWidth))
	return b.String()
}

// RenderExpired renders the expired stock report, with a distinct message
// when nothing has expired.
func RenderExpired(rep ExpiredReport) string {
	var b strings.Builder
	appendHeader(&b, "Expired Medicines Report")
	appendColumns(&b, "%-20s %-15s %-15s %-10s %-10s\n", "Medicine", "Batch Number", "Expiry Date", "Quantity", "Price")

	for _, med := range rep.Lines {
		fmt.Fprintf(&b, "%-20s %-15s %-15s %-10d %s%-9.2f\n",
			med.Name, med.Batch, med.Expiry, med.Quantity, currencyMarker, med.UnitPrice)
	}

	if rep.IsEmpty {
		b.WriteString("No expired medicines found.\n")
	} else {
		b.WriteString("\n")
		b.WriteString(strings.Repeat("=", ruleWidth))
		b.WriteString("\n")
		fmt.Fprintf(&b, "Total Expired Items: %d\n", rep.TotalItems)
		fmt.Fprintf(&b, "Total Value of Expired Stock: %s%.2f\n", currencyMarker, rep.TotalValue)
	}
	b.WriteString(strings.Repeat("=", ruleWidth))
	return b.String()
}
