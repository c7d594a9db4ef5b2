package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one key-value row
type Entry struct {
	Key       string    `gorm:"column:entry_key;primaryKey"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Entry Model
func (Entry) TableName() string {
	return "kv_entries"
}

// SQLite keeps entries in a single SQLite table through gorm.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the database file at path and
// migrates the entries table. Uses glebarez/sqlite, so no CGO is required.
func OpenSQLite(path string, level logger.LogLevel) (*SQLite, error) {
	if path == "" {
		path = "taskboard.db"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return NewSQLite(db)
}

// NewSQLite wraps an existing connection and runs the migration.
func NewSQLite(db *gorm.DB) (*SQLite, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	result := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&e)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return e.Value, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	e := Entry{Key: key, Value: value}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&Entry{}).Error
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
