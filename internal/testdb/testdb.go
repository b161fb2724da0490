// Package testdb opens an isolated, migrated in-memory database per test.
package testdb

import (
	"strings"
	"testing"

	"gorm.io/gorm"

	"agrisense/database"
)

func Open(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory DB per test; shared cache keeps it alive across the pool.
	dsn := "file:" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "?mode=memory&cache=shared"
	db, err := database.OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection serialises writers; shared-cache sqlite reports SQLITE_LOCKED otherwise
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
