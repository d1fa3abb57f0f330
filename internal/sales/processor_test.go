package sales

import (
	"errors"
	"path/filepath"
	"sync"
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
	processor *Processor
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := database.Connect(filepath.Join(t.TempDir(), "pharmacy.db"))
	t.Cleanup(func() { _ = db.Close() })
	migrations.Run(db)

	medicines := store.New(db)
	salesLedger := ledger.New(db)
	p := NewProcessor(db, medicines, salesLedger)
	p.now = func() time.Time { return time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC) }
	return fixture{medicines: medicines, sales: salesLedger, processor: p}
}

func (f fixture) ledgerSize(t *testing.T) int {
	t.Helper()
	records, err := f.sales.Query("2025-01-10", "2025-01-10")
	require.NoError(t, err)
	return len(records)
}

func TestCompleteSale(t *testing.T) {
	f := newFixture(t)

	id, err := f.medicines.Add("Paracetamol", "BATCH001", "2025-12-31", 100, 5.50)
	require.NoError(t, err)

	rec, err := f.processor.CompleteSale(id, 30)
	require.NoError(t, err)
	require.Equal(t, id, rec.MedicineID)
	require.Equal(t, "Paracetamol", rec.MedicineName)
	require.Equal(t, int64(30), rec.QuantitySold)
	require.Equal(t, 5.50, rec.UnitPrice)
	require.Equal(t, 165.00, rec.TotalAmount)
	require.Equal(t, "2025-01-10", rec.SaleDate)

	med, err := f.medicines.Get(id)
	require.NoError(t, err)
	require.Equal(t, int64(70), med.Quantity)
	require.Equal(t, 1, f.ledgerSize(t))
}

func TestCompleteSaleInsufficientStockLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)

	id, err := f.medicines.Add("Paracetamol", "BATCH001", "2025-12-31", 70, 5.50)
	require.NoError(t, err)

	_, err = f.processor.CompleteSale(id, 1000)
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, int64(70), insufficient.Available)

	med, err := f.medicines.Get(id)
	require.NoError(t, err)
	require.Equal(t, int64(70), med.Quantity)
	require.Equal(t, 0, f.ledgerSize(t))
}

func TestCompleteSaleInvalidQuantity(t *testing.T) {
	f := newFixture(t)

	id, err := f.medicines.Add("Paracetamol", "BATCH001", "2025-12-31", 100, 5.50)
	require.NoError(t, err)

	for _, quantity := range []int64{0, -3} {
		_, err = f.processor.CompleteSale(id, quantity)
		require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}

	med, err := f.medicines.Get(id)
	require.NoError(t, err)
	require.Equal(t, int64(100), med.Quantity)
	require.Equal(t, 0, f.ledgerSize(t))
}

func TestCompleteSaleUnknownMedicine(t *testing.T) {
	f := newFixture(t)

	_, err := f.processor.CompleteSale(9999, 1)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, 0, f.ledgerSize(t))
}

func TestCompleteSaleSnapshotSurvivesEditsAndDeletion(t *testing.T) {
	f := newFixture(t)

	id, err := f.medicines.Add("Paracetamol", "BATCH001", "2025-12-31", 100, 5.50)
	require.NoError(t, err)

	rec, err := f.processor.CompleteSale(id, 10)
	require.NoError(t, err)

	// Later edits and even deletion must not touch the recorded snapshot.
	require.NoError(t, f.medicines.Update(id, "Paracetamol Forte", "BATCH099", "2026-12-31", 90, 9.99))
	require.NoError(t, f.medicines.Remove(id))

	records, err := f.sales.Query("2025-01-10", "2025-01-10")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, rec.ID, records[0].ID)
	require.Equal(t, "Paracetamol", records[0].MedicineName)
	require.Equal(t, 5.50, records[0].UnitPrice)
	require.Equal(t, 55.00, records[0].TotalAmount)

	// New sales against the deleted id must fail.
	_, err = f.processor.CompleteSale(id, 1)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestConcurrentSalesNeverOversell(t *testing.T) {
	f := newFixture(t)

	const (
		initialStock = 50
		callers      = 10
		perSale      = 10
	)
	id, err := f.medicines.Add("Paracetamol", "BATCH001", "2025-12-31", initialStock, 5.50)
	require.NoError(t, err)

	results := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.processor.CompleteSale(id, perSale)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var insufficient *domain.InsufficientStockError
		require.True(t, errors.As(err, &insufficient), "unexpected error: %v", err)
	}

	sold := int64(successes * perSale)
	require.LessOrEqual(t, sold, int64(initialStock))

	med, err := f.medicines.Get(id)
	require.NoError(t, err)
	require.Equal(t, int64(initialStock)-sold, med.Quantity)
	require.GreaterOrEqual(t, med.Quantity, int64(0))
	require.Equal(t, successes, f.ledgerSize(t))
}
