// Package report turns store and ledger snapshots into aggregate views.
// It only reads; nothing here mutates any entity.
package report

import (
	"time"

	"pharmapos/m/domain"
	"pharmapos/m/internal/ledger"
	"pharmapos/m/internal/store"
)

// SalesReport summarises the sales within a date range.
type SalesReport struct {
	Lines        []domain.SaleRecord `json:"lines"`
	TotalItems   int64               `json:"total_items"`
	TotalRevenue float64             `json:"total_revenue"`
}

// InventoryReport summarises the current stock.
type InventoryReport struct {
	Lines      []domain.Medicine `json:"lines"`
	TotalItems int64             `json:"total_items"`
	TotalValue float64           `json:"total_value"`
}

// ExpiredReport summarises stock past its expiry date. IsEmpty lets the
// caller show a "none found" message instead of an empty table.
type ExpiredReport struct {
	Lines      []domain.Medicine `json:"lines"`
	TotalItems int64             `json:"total_items"`
	TotalValue float64           `json:"total_value"`
	IsEmpty    bool              `json:"is_empty"`
}

// Generator aggregates over the medicine store and the sales ledger.
type Generator struct {
	store  *store.MedicineStore
	ledger *ledger.SalesLedger
}

// NewGenerator constructs a Generator.
func NewGenerator(medicines *store.MedicineStore, sales *ledger.SalesLedger) *Generator {
	return &Generator{store: medicines, ledger: sales}
}

// Sales aggregates sales in the inclusive date range. An empty range
// yields zero totals and no lines, not an error.
func (g *Generator) Sales(startDate, endDate string) (SalesReport, error) {
	records, err := g.ledger.Query(startDate, endDate)
	if err != nil {
		return SalesReport{}, err
	}
	rep := SalesReport{Lines: records}
	for _, rec := range records {
		rep.TotalItems += rec.QuantitySold
		rep.TotalRevenue += rec.TotalAmount
	}
	return rep, nil
}

// Inventory aggregates every stocked medicine.
func (g *Generator) Inventory() (InventoryReport, error) {
	meds, err := g.store.ListAll()
	if err != nil {
		return InventoryReport{}, err
	}
	rep := InventoryReport{Lines: meds}
	for _, med := range meds {
		rep.TotalItems += med.Quantity
		rep.TotalValue += med.StockValue()
	}
	return rep, nil
}

// Expired aggregates medicines that expired strictly before asOfDate.
func (g *Generator) Expired(asOfDate string) (ExpiredReport, error) {
	meds, err := g.store.ListExpired(asOfDate)
	if err != nil {
		return ExpiredReport{}, err
	}
	rep := ExpiredReport{Lines: meds, IsEmpty: len(meds) == 0}
	for _, med := range meds {
		rep.TotalItems += med.Quantity
		rep.TotalValue += med.StockValue()
	}
	return rep, nil
}

// DailyRange is the one-day window for the given date.
func DailyRange(date time.Time) (string, string) {
	d := date.Format(domain.DateLayout)
	return d, d
}

// WeeklyRange is the seven days ending at the given date.
func WeeklyRange(end time.Time) (string, string) {
	return end.AddDate(0, 0, -7).Format(domain.DateLayout), end.Format(domain.DateLayout)
}

// MonthlyRange is the thirty days ending at the given date.
func MonthlyRange(end time.Time) (string, string) {
	return end.AddDate(0, 0, -30).Format(domain.DateLayout), end.Format(domain.DateLayout)
}
