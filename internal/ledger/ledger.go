// Package ledger keeps the append-only record of completed sales. Entries
// are never updated or deleted; historical reports depend on that.
package ledger

import (
	"github.com/jmoiron/sqlx"

	"pharmapos/m/domain"
)

// SalesLedger is the sole writer of the sales table.
type SalesLedger struct {
	db *sqlx.DB
}

// New constructs a SalesLedger over the shared database handle.
func New(db *sqlx.DB) *SalesLedger {
	return &SalesLedger{db: db}
}

// Record appends one sale. The total is computed here, once, from the
// snapshot values the caller validated; ids are assigned sequentially by
// the store engine.
func (l *SalesLedger) Record(medicineID int64, medicineName string, quantitySold int64, unitPrice float64, saleDate string) (domain.SaleRecord, error) {
	return record(l.db, medicineID, medicineName, quantitySold, unitPrice, saleDate)
}

// RecordTx is Record scoped to a caller-owned transaction.
func (l *SalesLedger) RecordTx(tx *sqlx.Tx, medicineID int64, medicineName string, quantitySold int64, unitPrice float64, saleDate string) (domain.SaleRecord, error) {
	return record(tx, medicineID, medicineName, quantitySold, unitPrice, saleDate)
}

func record(e sqlx.Execer, medicineID int64, medicineName string, quantitySold int64, unitPrice float64, saleDate string) (domain.SaleRecord, error) {
	total := float64(quantitySold) * unitPrice
	res, err := e.Exec(`INSERT INTO sales (medicine_id, medicine_name, quantity, price_per_unit, total_amount, sale_date) VALUES (?, ?, ?, ?, ?, ?)`,
		medicineID, medicineName, quantitySold, unitPrice, total, saleDate)
	if err != nil {
		return domain.SaleRecord{}, &domain.PersistenceError{Op: "record sale", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.SaleRecord{}, &domain.PersistenceError{Op: "record sale", Err: err}
	}
	return domain.SaleRecord{
		ID:           id,
		MedicineID:   medicineID,
		MedicineName: medicineName,
		QuantitySold: quantitySold,
		UnitPrice:    unitPrice,
		TotalAmount:  total,
		SaleDate:     saleDate,
	}, nil
}

// Query returns sales within the inclusive date range, oldest first.
func (l *SalesLedger) Query(startDate, endDate string) ([]domain.SaleRecord, error) {
	if err := domain.ValidateDate("start_date", startDate); err != nil {
		return nil, err
	}
	if err := domain.ValidateDate("end_date", endDate); err != nil {
		return nil, err
	}
	var records []domain.SaleRecord
	err := l.db.Select(&records, `SELECT id, medicine_id, medicine_name, quantity, price_per_unit, total_amount, sale_date FROM sales
                WHERE sale_date BETWEEN ? AND ? ORDER BY sale_date, id`, startDate, endDate)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "query sales", Err: err}
	}
	return records, nil
}

// Recent returns the newest entries first, capped at limit.
func (l *SalesLedger) Recent(limit int64) ([]domain.SaleRecord, error) {
	if limit <= 0 {
		return nil, &domain.ValidationError{Field: "limit", Reason: "must be greater than zero"}
	}
	var records []domain.SaleRecord
	err := l.db.Select(&records, `SELECT id, medicine_id, medicine_name, quantity, price_per_unit, total_amount, sale_date FROM sales
                ORDER BY sale_date DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load sales history", Err: err}
	}
	return records, nil
}
