// Package storage provides the durable key-value backends the task store
// persists its collection into.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm/logger"
)

var (
	// ErrNotFound is returned by Get when the key has never been written.
	ErrNotFound = errors.New("storage: key not found")

	// ErrQuotaExceeded is returned by Set when the value does not fit.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
)

// Storage is a minimal durable key-value API. Values are opaque bytes.
type Storage interface {
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Options selects and configures a backend for Open.
type Options struct {
	Driver     string
	Path       string
	RedisURL   string
	QuotaBytes int
	Debug      bool
}

// Open builds the backend named by opts.Driver.
func Open(opts Options) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverSQLite:
		lvl := logger.Silent
		if opts.Debug {
			lvl = logger.Info
		}
		return OpenSQLite(opts.Path, lvl)
	case DriverRedis:
		return OpenRedis(opts.RedisURL)
	case DriverMemory:
		return NewMemory(MemoryOptions{QuotaBytes: opts.QuotaBytes}), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}
