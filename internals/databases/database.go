package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	assignmentmodel "eca_backend/internals/features/assignments/model"
	billmodel "eca_backend/internals/features/bills/model"
	cataloguemodel "eca_backend/internals/features/catalogue/model"
	ordermodel "eca_backend/internals/features/orders/model"
	refmodel "eca_backend/internals/features/reference/model"
	usermodel "eca_backend/internals/features/users/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 connecting to PostgreSQL...")

	sslmode := getenv("DB_SSLMODE", "disable")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=eca_backend&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		getenv("DB_HOST", "localhost"),
		getenv("DB_PORT", "5432"),
		os.Getenv("DB_NAME"),
		sslmode,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // plays well with PgBouncer transaction pooling
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	DB = db
	log.Println("✅ DB connected")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("⚠️ pool tuning skipped: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
}

// Migrate runs AutoMigrate for the whole schema and seeds the reference
// vocabularies. Safe to run on every boot.
func Migrate() {
	err := DB.AutoMigrate(
		&refmodel.StatusModel{},
		&refmodel.MediaFormatModel{},
		&refmodel.BillStateModel{},
		&usermodel.UserModel{},
		&cataloguemodel.OuvrageModel{},
		&billmodel.BillModel{},
		&ordermodel.OrderModel{},
		&assignmentmodel.AssignmentModel{},
		&assignmentmodel.AssignmentReaderModel{},
	)
	if err != nil {
		log.Fatalf("❌ migration failed: %v", err)
	}

	if err := SeedReferenceData(DB); err != nil {
		log.Fatalf("❌ reference seed failed: %v", err)
	}
	log.Println("✅ schema migrated, reference data seeded")
}

// SeedReferenceData inserts the base vocabularies if missing. Operators may
// add further rows later; existing rows are left alone.
func SeedReferenceData(db *gorm.DB) error {
	statuses := []refmodel.StatusModel{
		{Code: "recu", Label: "Demande reçue"},
		{Code: "en_cours", Label: "En cours de traitement"},
		{Code: "enregistrement", Label: "Enregistrement en cours"},
		{Code: refmodel.StatusCodeTermine, Label: "Terminé"},
		{Code: "annule", Label: "Annulé"},
	}
	for _, s := range statuses {
		if err := db.Where(refmodel.StatusModel{Code: s.Code}).FirstOrCreate(&s).Error; err != nil {
			return err
		}
	}

	formats := []refmodel.MediaFormatModel{
		{Code: "cd", Label: "CD audio"},
		{Code: "mp3", Label: "MP3"},
		{Code: "cle_usb", Label: "Clé USB"},
		{Code: "daisy", Label: "DAISY"},
	}
	for _, f := range formats {
		if err := db.Where(refmodel.MediaFormatModel{Code: f.Code}).FirstOrCreate(&f).Error; err != nil {
			return err
		}
	}

	states := []refmodel.BillStateModel{
		{Code: refmodel.BillStateCodeBrouillon, Label: "Brouillon"},
		{Code: refmodel.BillStateCodeEmise, Label: "Émise"},
		{Code: refmodel.BillStateCodePayee, Label: "Payée"},
	}
	for _, s := range states {
		if err := db.Where(refmodel.BillStateModel{Code: s.Code}).FirstOrCreate(&s).Error; err != nil {
			return err
		}
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
