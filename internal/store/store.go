// Package store owns medicine records and every stock mutation.
package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"pharmapos/m/domain"
)

// MedicineStore is the sole writer of the medicines table.
type MedicineStore struct {
	db *sqlx.DB
}

// New constructs a MedicineStore over the shared database handle.
func New(db *sqlx.DB) *MedicineStore {
	return &MedicineStore{db: db}
}

func validateMedicine(name, batch, expiry string, quantity int64, unitPrice float64) error {
	if strings.TrimSpace(name) == "" {
		return &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(batch) == "" {
		return &domain.ValidationError{Field: "batch_number", Reason: "must not be empty"}
	}
	if err := domain.ValidateDate("expiry_date", expiry); err != nil {
		return err
	}
	if quantity < 0 {
		return &domain.ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	if unitPrice < 0 {
		return &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	return nil
}

// Add creates a medicine and returns its freshly assigned id.
func (s *MedicineStore) Add(name, batch, expiry string, quantity int64, unitPrice float64) (int64, error) {
	if err := validateMedicine(name, batch, expiry, quantity, unitPrice); err != nil {
		return 0, err
	}
	res, err := s.db.Exec(`INSERT INTO medicines (name, batch_number, expiry_date, quantity, price) VALUES (?, ?, ?, ?, ?)`,
		name, batch, expiry, quantity, unitPrice)
	if err != nil {
		return 0, &domain.PersistenceError{Op: "add medicine", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &domain.PersistenceError{Op: "add medicine", Err: err}
	}
	return id, nil
}

// Update fully replaces the mutable fields of an existing medicine.
func (s *MedicineStore) Update(id int64, name, batch, expiry string, quantity int64, unitPrice float64) error {
	if err := validateMedicine(name, batch, expiry, quantity, unitPrice); err != nil {
		return err
	}
	res, err := s.db.Exec(`UPDATE medicines SET name = ?, batch_number = ?, expiry_date = ?, quantity = ?, price = ? WHERE id = ?`,
		name, batch, expiry, quantity, unitPrice, id)
	if err != nil {
		return &domain.PersistenceError{Op: "update medicine", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &domain.PersistenceError{Op: "update medicine", Err: err}
	}
	if affected == 0 {
		return &domain.NotFoundError{ID: id}
	}
	return nil
}

// Remove deletes a medicine. Its id is never reassigned; existing sale
// records keep their snapshots and are left untouched.
func (s *MedicineStore) Remove(id int64) error {
	res, err := s.db.Exec(`DELETE FROM medicines WHERE id = ?`, id)
	if err != nil {
		return &domain.PersistenceError{Op: "remove medicine", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &domain.PersistenceError{Op: "remove medicine", Err: err}
	}
	if affected == 0 {
		return &domain.NotFoundError{ID: id}
	}
	return nil
}

// Get returns one medicine by id.
func (s *MedicineStore) Get(id int64) (domain.Medicine, error) {
	return getMedicine(s.db, id)
}

func getMedicine(q sqlx.Queryer, id int64) (domain.Medicine, error) {
	var med domain.Medicine
	err := sqlx.Get(q, &med, `SELECT id, name, batch_number, expiry_date, quantity, price FROM medicines WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Medicine{}, &domain.NotFoundError{ID: id}
	}
	if err != nil {
		return domain.Medicine{}, &domain.PersistenceError{Op: "get medicine", Err: err}
	}
	return med, nil
}

// GetTx is Get scoped to a caller-owned transaction.
func (s *MedicineStore) GetTx(tx *sqlx.Tx, id int64) (domain.Medicine, error) {
	return getMedicine(tx, id)
}

// DecrementTx is Decrement scoped to a caller-owned transaction, so a sale
// can pair the stock deduction with its ledger append in one unit.
func (s *MedicineStore) DecrementTx(tx *sqlx.Tx, id, quantity int64) error {
	return decrement(tx, id, quantity)
}

// Decrement removes quantity units of stock. The update is conditional on
// enough stock being present, so concurrent callers on the same id can
// never jointly drive the quantity below zero.
func (s *MedicineStore) Decrement(id, quantity int64) error {
	return decrement(s.db, id, quantity)
}

type execQueryer interface {
	sqlx.Execer
	sqlx.Queryer
}

func decrement(e execQueryer, id, quantity int64) error {
	if quantity <= 0 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	res, err := e.Exec(`UPDATE medicines SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`, quantity, id, quantity)
	if err != nil {
		return &domain.PersistenceError{Op: "decrement stock", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &domain.PersistenceError{Op: "decrement stock", Err: err}
	}
	if affected == 1 {
		return nil
	}
	// The guard rejected the update: either the id is unknown or the
	// stock is short. Re-read to tell the two apart.
	med, err := getMedicine(e, id)
	if err != nil {
		return err
	}
	return &domain.InsufficientStockError{MedicineID: id, Requested: quantity, Available: med.Quantity}
}

// FindByNameOrBatch returns medicines whose name or batch contains the
// pattern, case-insensitively. An empty pattern matches everything.
func (s *MedicineStore) FindByNameOrBatch(pattern string) ([]domain.Medicine, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return s.ListAll()
	}
	like := "%" + strings.ToLower(pattern) + "%"
	var meds []domain.Medicine
	err := s.db.Select(&meds, `SELECT id, name, batch_number, expiry_date, quantity, price FROM medicines
                WHERE LOWER(name) LIKE ? OR LOWER(batch_number) LIKE ? ORDER BY name`, like, like)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "search medicines", Err: err}
	}
	return meds, nil
}

// ListLowStock returns medicines at or below the threshold, lowest first.
func (s *MedicineStore) ListLowStock(threshold int64) ([]domain.Medicine, error) {
	var meds []domain.Medicine
	err := s.db.Select(&meds, `SELECT id, name, batch_number, expiry_date, quantity, price FROM medicines
                WHERE quantity <= ? ORDER BY quantity`, threshold)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list low stock", Err: err}
	}
	return meds, nil
}

// ListExpired returns medicines that expired strictly before asOfDate,
// earliest expiry first.
func (s *MedicineStore) ListExpired(asOfDate string) ([]domain.Medicine, error) {
	if err := domain.ValidateDate("as_of_date", asOfDate); err != nil {
		return nil, err
	}
	var meds []domain.Medicine
	err := s.db.Select(&meds, `SELECT id, name, batch_number, expiry_date, quantity, price FROM medicines
                WHERE expiry_date < ? ORDER BY expiry_date`, asOfDate)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list expired", Err: err}
	}
	return meds, nil
}

// ListAll returns every medicine ordered by name.
func (s *MedicineStore) ListAll() ([]domain.Medicine, error) {
	var meds []domain.Medicine
	err := s.db.Select(&meds, `SELECT id, name, batch_number, expiry_date, quantity, price FROM medicines ORDER BY name`)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list medicines", Err: err}
	}
	return meds, nil
}
