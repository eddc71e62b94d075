package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/umutoz/defter-be/internal/database"
	"github.com/umutoz/defter-be/internal/models"
)

// newTestDB opens a fresh migrated SQLite database in a temp directory.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.New(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}
	return db
}

// newTestUser registers a user and returns it.
func newTestUser(t *testing.T, db *sql.DB, email string) models.User {
	t.Helper()

	user, err := NewUserService(db).Register(context.Background(), email, "correct-horse")
	if err != nil {
		t.Fatalf("Failed to register %s: %v", email, err)
	}
	return user
}

// insertTransaction writes a ledger row directly, bypassing the service,
// so tests can control the creation timestamp.
func insertTransaction(t *testing.T, db *sql.DB, userID, id, title string, cents int64, kind string, createdAt int64) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO transactions(id, user_id, title, amount_cents, kind, source, source_id, payment_method, description, created_at)
		 VALUES(?, ?, ?, ?, ?, '', '', '', '', ?)`,
		id, userID, title, cents, kind, createdAt)
	if err != nil {
		t.Fatalf("Failed to insert transaction %s: %v", id, err)
	}
}
