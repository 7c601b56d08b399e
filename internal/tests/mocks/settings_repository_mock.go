package mocks

import (
	"context"
	"sync"
)

// SettingsRepositoryMock keeps documents in memory unless GetFunc or PutFunc
// override it.
type SettingsRepositoryMock struct {
	GetFunc func(ctx context.Context, key string) ([]byte, error)
	PutFunc func(ctx context.Context, key string, value []byte) error

	mu     sync.Mutex
	values map[string][]byte
	Puts   int
}

func (m *SettingsRepositoryMock) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *SettingsRepositoryMock) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.Puts++
	m.mu.Unlock()
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	m.values[key] = append([]byte(nil), value...)
	return nil
}

// Stored returns the document last written under key.
func (m *SettingsRepositoryMock) Stored(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}
