package domain

type Medicine struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Batch     string  `db:"batch_number" json:"batch_number"`
	Expiry    string  `db:"expiry_date" json:"expiry_date"`
	Quantity  int64   `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"price" json:"price"`
}

// StockValue is the value of the units on hand at the current price.
func (m Medicine) StockValue() float64 {
	return float64(m.Quantity) * m.UnitPrice
}
