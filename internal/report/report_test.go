package report

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pharmapos/m/domain"
	"pharmapos/m/internal/database"
	"pharmapos/m/internal/ledger"
	"pharmapos/m/internal/migrations"
	"pharmapos/m/internal/store"
)

type fixture struct {
	medicines *store.MedicineStore
	sales     *ledger.SalesLedger
	reports   *Generator
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := database.Connect(filepath.Join(t.TempDir(), "pharmacy.db"))
	t.Cleanup(func() { _ = db.Close() })
	migrations.Run(db)

	medicines := store.New(db)
	salesLedger := ledger.New(db)
	return fixture{medicines: medicines, sales: salesLedger, reports: NewGenerator(medicines, salesLedger)}
}

func TestSalesReportTotalsAreExactSums(t *testing.T) {
	f := newFixture(t)

	_, err := f.sales.Record(1, "Paracetamol", 30, 5.50, "2025-01-10")
	require.NoError(t, err)
	_, err = f.sales.Record(2, "Aspirin", 4, 8.25, "2025-01-11")
	require.NoError(t, err)
	_, err = f.sales.Record(3, "Ibuprofen", 2, 12.00, "2025-02-01")
	require.NoError(t, err)

	rep, err := f.reports.Sales("2025-01-01", "2025-01-31")
	require.NoError(t, err)
	require.Len(t, rep.Lines, 2)
	require.Equal(t, int64(34), rep.TotalItems)

	var wantRevenue, wantByParts float64
	for _, line := range rep.Lines {
		wantRevenue += line.TotalAmount
		wantByParts += float64(line.QuantitySold) * line.UnitPrice
	}
	require.Equal(t, wantRevenue, rep.TotalRevenue)
	require.Equal(t, wantByParts, rep.TotalRevenue)
	require.Equal(t, 198.00, rep.TotalRevenue)
}

func TestSalesReportEmptyRange(t *testing.T) {
	f := newFixture(t)

	rep, err := f.reports.Sales("2025-01-01", "2025-01-31")
	require.NoError(t, err)
	require.Empty(t, rep.Lines)
	require.Zero(t, rep.TotalItems)
	require.Zero(t, rep.TotalRevenue)
}

func TestInventoryReport(t *testing.T) {
	f := newFixture(t)

	_, err := f.medicines.Add("Paracetamol", "BATCH001", "2025-12-31", 100, 5.50)
	require.NoError(t, err)
	_, err = f.medicines.Add("Aspirin", "BATCH002", "2025-06-30", 75, 8.25)
	require.NoError(t, err)

	rep, err := f.reports.Inventory()
	require.NoError(t, err)
	require.Len(t, rep.Lines, 2)
	require.Equal(t, int64(175), rep.TotalItems)
	require.Equal(t, 100*5.50+75*8.25, rep.TotalValue)
}

func TestExpiredReport(t *testing.T) {
	f := newFixture(t)

	_, err := f.medicines.Add("Amoxicillin", "BATCH004", "2024-12-31", 25, 15.75)
	require.NoError(t, err)
	_, err = f.medicines.Add("Paracetamol", "BATCH001", "2025-12-31", 100, 5.50)
	require.NoError(t, err)

	rep, err := f.reports.Expired("2025-01-01")
	require.NoError(t, err)
	require.False(t, rep.IsEmpty)
	require.Len(t, rep.Lines, 1)
	require.Equal(t, int64(25), rep.TotalItems)
	require.Equal(t, 393.75, rep.TotalValue)

	none, err := f.reports.Expired("2024-01-01")
	require.NoError(t, err)
	require.True(t, none.IsEmpty)
	require.Empty(t, none.Lines)
	require.Zero(t, none.TotalItems)
	require.Zero(t, none.TotalValue)
}

func TestRenderSales(t *testing.T) {
	f := newFixture(t)

	_, err := f.sales.Record(1, "Paracetamol", 30, 5.50, "2025-01-10")
	require.NoError(t, err)

	rep, err := f.reports.Sales("2025-01-10", "2025-01-10")
	require.NoError(t, err)

	text := RenderSales("Daily Sales Report - 2025-01-10", rep)
	require.Contains(t, text, "Daily Sales Report - 2025-01-10")
	// Fixed-width columns: name padded to 20, quantity to 10.
	require.Contains(t, text, "Paracetamol          30         K5.50")
	require.Contains(t, text, "Total Items Sold: 30")
	require.Contains(t, text, "Total Revenue: K165.00")
}

func TestRenderExpired(t *testing.T) {
	f := newFixture(t)

	_, err := f.medicines.Add("Amoxicillin", "BATCH004", "2024-12-31", 25, 15.75)
	require.NoError(t, err)

	rep, err := f.reports.Expired("2025-01-01")
	require.NoError(t, err)
	text := RenderExpired(rep)
	require.Contains(t, text, "Expired Medicines Report")
	require.Contains(t, text, "Amoxicillin")
	require.Contains(t, text, "Total Expired Items: 25")
	require.Contains(t, text, "Total Value of Expired Stock: K393.75")

	empty, err := f.reports.Expired("2024-01-01")
	require.NoError(t, err)
	emptyText := RenderExpired(empty)
	require.Contains(t, emptyText, "No expired medicines found.")
	require.NotContains(t, emptyText, "Total Expired Items")
}

func TestRenderInventory(t *testing.T) {
	f := newFixture(t)

	_, err := f.medicines.Add("Paracetamol", "BATCH001", "2025-12-31", 100, 5.50)
	require.NoError(t, err)

	rep, err := f.reports.Inventory()
	require.NoError(t, err)
	text := RenderInventory(rep)
	require.Contains(t, text, "Inventory Report")
	require.Contains(t, text, "Total Items in Stock: 100")
	require.Contains(t, text, "Total Inventory Value: K550.00")
	require.True(t, strings.Contains(text, "BATCH001"))
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(domain.DateLayout, value)
	require.NoError(t, err)
	return parsed
}

func TestReportRanges(t *testing.T) {
	end := mustDate(t, "2025-01-31")

	start, stop := DailyRange(end)
	require.Equal(t, "2025-01-31", start)
	require.Equal(t, "2025-01-31", stop)

	start, stop = WeeklyRange(end)
	require.Equal(t, "2025-01-24", start)
	require.Equal(t, "2025-01-31", stop)

	start, stop = MonthlyRange(end)
	require.Equal(t, "2025-01-01", start)
	require.Equal(t, "2025-01-31", stop)
}
