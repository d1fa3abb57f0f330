package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"pharmapos/m/internal/api"
	"pharmapos/m/internal/config"
	"pharmapos/m/internal/database"
	"pharmapos/m/internal/ledger"
	"pharmapos/m/internal/migrations"
	"pharmapos/m/internal/report"
	"pharmapos/m/internal/sales"
	"pharmapos/m/internal/seed"
	"pharmapos/m/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	seed.LoadMedicines(db, cfg.SeedCSV)
	seed.EnsureAdmin(db, cfg.AdminUser, cfg.AdminPassword)

	medicines := store.New(db)
	salesLedger := ledger.New(db)
	processor := sales.NewProcessor(db, medicines, salesLedger)
	reports := report.NewGenerator(medicines, salesLedger)

	handler := api.New(db, medicines, salesLedger, processor, reports, cfg.Secret)

	log.Printf("pharmacy POS server starting on :%s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
