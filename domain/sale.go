package domain

// SaleRecord is one completed sale. Records are append-only: the name and
// unit price are snapshots taken at sale time, so a record stays accurate
// after the medicine is edited or deleted.
type SaleRecord struct {
	ID           int64   `db:"id" json:"id"`
	MedicineID   int64   `db:"medicine_id" json:"medicine_id"`
	MedicineName string  `db:"medicine_name" json:"medicine_name"`
	QuantitySold int64   `db:"quantity" json:"quantity"`
	UnitPrice    float64 `db:"price_per_unit" json:"price_per_unit"`
	TotalAmount  float64 `db:"total_amount" json:"total_amount"`
	SaleDate     string  `db:"sale_date" json:"sale_date"`
}
