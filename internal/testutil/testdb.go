package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm/logger"

	"taskboard/internal/storage"
	"taskboard/internal/store"
)

// NewInMemoryDB creates an in-memory SQLite backend and runs migrations.
func NewInMemoryDB() (*storage.SQLite, error) {
	return storage.OpenSQLite(":memory:", logger.Silent)
}

// NewStore returns a seeded store over a fresh in-memory SQLite backend.
func NewStore(t testing.TB, opts ...store.Option) *store.Store {
	t.Helper()
	db, err := NewInMemoryDB()
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return store.New(context.Background(), db, opts...)
}
