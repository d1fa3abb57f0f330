package seed

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// sampleMedicines is the built-in starter catalog used when no CSV is
// available: name, batch, expiry, quantity, unit price.
var sampleMedicines = [][]string{
	{"Paracetamol", "BATCH001", "2025-12-31", "100", "5.50"},
	{"Aspirin", "BATCH002", "2025-06-30", "75", "8.25"},
	{"Ibuprofen", "BATCH003", "2025-09-15", "50", "12.00"},
	{"Amoxicillin", "BATCH004", "2025-03-20", "25", "15.75"},
}

// LoadMedicines populates the medicines table when it is empty, from the
// CSV catalog at csvPath if present, otherwise from the built-in samples.
// CSV columns: name, batch, expiry (YYYY-MM-DD), quantity, price.
func LoadMedicines(db *sqlx.DB, csvPath string) {
	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM medicines`); err != nil {
		log.Printf("unable to check medicine catalog: %v", err)
		return
	}
	if count > 0 {
		return
	}

	rows := sampleMedicines
	if fromCSV, err := readCatalog(csvPath); err == nil && len(fromCSV) > 0 {
		rows = fromCSV
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Printf("unable to start medicine seed: %v", err)
		return
	}
	stmt, err := tx.Preparex(`INSERT INTO medicines (name, batch_number, expiry_date, quantity, price) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		log.Printf("unable to prepare medicine insert: %v", err)
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	inserted := 0
	for _, row := range rows {
		quantity, err := strconv.ParseInt(row[3], 10, 64)
		if err != nil || quantity < 0 {
			continue
		}
		price, err := strconv.ParseFloat(row[4], 64)
		if err != nil || price < 0 {
			continue
		}
		if _, err := stmt.Exec(row[0], row[1], row[2], quantity, price); err != nil {
			log.Printf("unable to insert medicine %s: %v", row[0], err)
		} else {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("unable to commit medicine seed: %v", err)
	} else {
		log.Printf("seeded medicine catalog with %d rows", inserted)
	}
}

func readCatalog(csvPath string) ([][]string, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read medicine row: %v", err)
			continue
		}
		if len(record) < 5 {
			continue
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if record[0] == "" || record[1] == "" {
			continue
		}
		rows = append(rows, record[:5])
	}
	return rows, nil
}

// EnsureAdmin creates the default login if the username is not taken. The
// password is stored as a bcrypt hash, never in the clear.
func EnsureAdmin(db *sqlx.DB, username, password string) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("unable to hash admin password: %v", err)
		return
	}
	if _, err := db.Exec(`INSERT OR IGNORE INTO users (username, password) VALUES (?, ?)`, username, hashed); err != nil {
		log.Printf("unable to seed admin user: %v", err)
	}
}
