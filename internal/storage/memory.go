package storage

import (
	"context"
	"sync"
)

// MemoryOptions controls construction of a Memory backend.
type MemoryOptions struct {
	// QuotaBytes caps the total size of all stored values. Zero means unlimited.
	QuotaBytes int
}

// Memory is a map-backed Storage, safe for concurrent use. It mimics a
// browser's local storage, including the write quota.
type Memory struct {
	mu    sync.RWMutex
	quota int
	items map[string][]byte
}

func NewMemory(opts MemoryOptions) *Memory {
	return &Memory{
		quota: opts.QuotaBytes,
		items: make(map[string][]byte),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quota > 0 {
		used := len(value)
		for k, v := range m.items {
			if k != key {
				used += len(v)
			}
		}
		if used > m.quota {
			return ErrQuotaExceeded
		}
	}
	m.items[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory) Close() error { return nil }

var _ Storage = (*Memory)(nil)
var _ Storage = (*SQLite)(nil)
var _ Storage = (*Redis)(nil)
