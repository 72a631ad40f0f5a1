// Package testutil spins the API against a throwaway PostgreSQL database.
// Tests skip when no database is reachable, so the suite can run anywhere
// without breaking CI boxes that lack postgres.
package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	database "eca_backend/internals/databases"
	assignmentmodel "eca_backend/internals/features/assignments/model"
	billmodel "eca_backend/internals/features/bills/model"
	cataloguemodel "eca_backend/internals/features/catalogue/model"
	ordermodel "eca_backend/internals/features/orders/model"
	refmodel "eca_backend/internals/features/reference/model"
	usermodel "eca_backend/internals/features/users/model"
	routes "eca_backend/internals/route"
)

const JWTSecret = "test-secret"

var (
	lockOnce sync.Once
	lockConn *sql.DB
)

// lockDatabase takes a session advisory lock held for the life of the test
// binary, serializing test packages that share the database.
func lockDatabase(t testing.TB, dsn string) {
	lockOnce.Do(func() {
		c, err := sql.Open("postgres", dsn)
		if err != nil {
			t.Fatalf("advisory lock connection: %v", err)
		}
		c.SetMaxOpenConns(1)
		if _, err := c.Exec("SELECT pg_advisory_lock(104212)"); err != nil {
			t.Fatalf("advisory lock: %v", err)
		}
		lockConn = c
	})
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// OpenTestDB connects to the test database, skipping the test when postgres
// is unreachable, and migrates the full schema.
func OpenTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getenv("PGHOST", "localhost"),
		getenv("PGPORT", "5432"),
		getenv("PGUSER", "postgres"),
		getenv("PGPASSWORD", "postgres"),
		getenv("PGDATABASE", "eca_test"),
	)

	probe, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to open database connection: %v", err)
	}
	if err := probe.Ping(); err != nil {
		probe.Close()
		t.Skipf("skipping: could not connect to postgres: %v", err)
	}
	probe.Close()

	lockDatabase(t, dsn)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}

	if err := db.AutoMigrate(
		&refmodel.StatusModel{},
		&refmodel.MediaFormatModel{},
		&refmodel.BillStateModel{},
		&usermodel.UserModel{},
		&cataloguemodel.OuvrageModel{},
		&billmodel.BillModel{},
		&ordermodel.OrderModel{},
		&assignmentmodel.AssignmentModel{},
		&assignmentmodel.AssignmentReaderModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ResetTables(t, db)
	return db
}

// ResetTables empties the mutable tables and reseeds the vocabularies.
func ResetTables(t testing.TB, db *gorm.DB) {
	t.Helper()
	err := db.Exec("TRUNCATE assignment_readers, assignments, orders, bills, users, ouvrages RESTART IDENTITY CASCADE").Error
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if err := database.SeedReferenceData(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

// NewTestApp mounts the real route tree on a bare fiber app (no limiter, so
// property tests can hammer it).
func NewTestApp(t testing.TB, db *gorm.DB) *fiber.App {
	t.Helper()
	os.Setenv("JWT_SECRET", JWTSecret)
	app := fiber.New()
	routes.SetupRoutes(app, db)
	return app
}

// Token mints a bearer token the way the external auth provider would.
func Token(t testing.TB, userID uint, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// DoJSON runs one request through the app and decodes the envelope.
func DoJSON(t testing.TB, app *fiber.App, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode %q: %v", string(raw), err)
		}
	}
	return resp.StatusCode, decoded
}

/* ==============================
   FIXTURES
============================== */

func CreateUser(t testing.TB, db *gorm.DB, role, name string) uint {
	t.Helper()
	u := usermodel.UserModel{
		FullName: name,
		Email:    fmt.Sprintf("%s-%d@example.org", role, time.Now().UnixNano()),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID
}

func CreateOuvrage(t testing.TB, db *gorm.DB, title, author string) uint {
	t.Helper()
	o := cataloguemodel.OuvrageModel{Title: title, Author: author}
	if err := db.Create(&o).Error; err != nil {
		t.Fatalf("create ouvrage: %v", err)
	}
	return o.ID
}

func StatusID(t testing.TB, db *gorm.DB, code string) uint {
	t.Helper()
	var s refmodel.StatusModel
	if err := db.Where("code = ?", code).First(&s).Error; err != nil {
		t.Fatalf("status %s: %v", code, err)
	}
	return s.ID
}

func MediaFormatID(t testing.TB, db *gorm.DB, code string) uint {
	t.Helper()
	var m refmodel.MediaFormatModel
	if err := db.Where("code = ?", code).First(&m).Error; err != nil {
		t.Fatalf("media format %s: %v", code, err)
	}
	return m.ID
}

func BillStateID(t testing.TB, db *gorm.DB, code string) uint {
	t.Helper()
	var s refmodel.BillStateModel
	if err := db.Where("code = ?", code).First(&s).Error; err != nil {
		t.Fatalf("bill state %s: %v", code, err)
	}
	return s.ID
}
