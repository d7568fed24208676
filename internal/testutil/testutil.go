package testutil

import (
	"fmt"
	"testing"

	"github.com/Baaaki/message-board/internal/database"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// TestDatabase holds an in-memory SQLite database with the production schema.
type TestDatabase struct {
	DB  *gorm.DB
	DSN string
}

// TestRedis holds an in-memory Redis (miniredis).
type TestRedis struct {
	Server *miniredis.Miniredis
	URL    string
}

// SetupTestDatabase creates a private in-memory SQLite database and migrates
// the real models into it. No Docker required.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	// Named so every pooled connection sees the same database
	dsn := database.SQLiteDSN(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))

	db, err := database.Open(sqlite.Open(dsn), gormlogger.Silent)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// One connection keeps the in-memory database alive and avoids
	// shared-cache table locks between pooled connections.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return &TestDatabase{
		DB:  db,
		DSN: dsn,
	}
}

// Teardown closes the connection, which drops the in-memory database.
func (td *TestDatabase) Teardown(t *testing.T) {
	if err := database.Close(td.DB); err != nil {
		t.Logf("Warning: Failed to close database: %v", err)
	}
}

// SetupTestRedis starts miniredis.
func SetupTestRedis(t *testing.T) *TestRedis {
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	return &TestRedis{
		Server: server,
		URL:    fmt.Sprintf("redis://%s", server.Addr()),
	}
}

func (tr *TestRedis) Teardown(t *testing.T) {
	tr.Server.Close()
}

// CleanDatabase deletes all rows, children first.
func CleanDatabase(t *testing.T, db *gorm.DB) {
	tables := []string{"messages", "accounts"}
	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("Warning: Failed to clean table %s: %v", table, err)
		}
	}
}
