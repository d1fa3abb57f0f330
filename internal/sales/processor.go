// Package sales orchestrates single sale transactions against the store
// and the ledger.
package sales

import (
	"time"

	"github.com/jmoiron/sqlx"

	"pharmapos/m/domain"
	"pharmapos/m/internal/ledger"
	"pharmapos/m/internal/store"
)

// Processor completes sales. It holds no state of its own; it coordinates
// the stock deduction and the ledger append as one transaction.
type Processor struct {
	db     *sqlx.DB
	store  *store.MedicineStore
	ledger *ledger.SalesLedger
	now    func() time.Time
}

// NewProcessor constructs a Processor over the shared database handle.
func NewProcessor(db *sqlx.DB, medicines *store.MedicineStore, sales *ledger.SalesLedger) *Processor {
	return &Processor{db: db, store: medicines, ledger: sales, now: time.Now}
}

// CompleteSale sells quantity units of the medicine. The name and unit
// price are snapshotted from the medicine as it is right now; the stock
// deduction and the ledger entry commit together or not at all. Any
// validation failure leaves both untouched.
func (p *Processor) CompleteSale(medicineID, quantity int64) (domain.SaleRecord, error) {
	tx, err := p.db.Beginx()
	if err != nil {
		return domain.SaleRecord{}, &domain.PersistenceError{Op: "begin sale", Err: err}
	}
	defer tx.Rollback()

	med, err := p.store.GetTx(tx, medicineID)
	if err != nil {
		return domain.SaleRecord{}, err
	}
	if quantity <= 0 {
		return domain.SaleRecord{}, domain.ErrInvalidQuantity
	}
	if quantity > med.Quantity {
		return domain.SaleRecord{}, &domain.InsufficientStockError{MedicineID: medicineID, Requested: quantity, Available: med.Quantity}
	}

	if err := p.store.DecrementTx(tx, medicineID, quantity); err != nil {
		return domain.SaleRecord{}, err
	}
	rec, err := p.ledger.RecordTx(tx, med.ID, med.Name, quantity, med.UnitPrice, p.now().Format(domain.DateLayout))
	if err != nil {
		return domain.SaleRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.SaleRecord{}, &domain.PersistenceError{Op: "commit sale", Err: err}
	}
	return rec, nil
}
