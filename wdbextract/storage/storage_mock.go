package storage

import (
	"bytes"
	"context"
	"io"
	"sync"

	wdberrors "github.com/flaneur2020/wdbextract/wdbextract/errors"
)

// MockStorage is a simple in-memory Storage implementation for tests.
type MockStorage struct {
	mu         sync.RWMutex
	containers map[string][]byte
	failing    map[string]error
	opened     []string
	seeks      int
}

// NewMockStorage constructs an empty MockStorage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		containers: make(map[string][]byte),
		failing:    make(map[string]error),
	}
}

// AddContainer adds container content under key.
func (m *MockStorage) AddContainer(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.containers[key] = append([]byte(nil), data...)
}

// FailContainer makes every open of key return err.
func (m *MockStorage) FailContainer(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failing[key] = err
}

// Opened returns the keys passed to OpenContainer, in call order.
func (m *MockStorage) Opened() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.opened...)
}

// Seeks returns the number of Seek calls made on all opened containers.
func (m *MockStorage) Seeks() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.seeks
}

func (m *MockStorage) Location(key string) string {
	return "mock://" + key
}

func (m *MockStorage) OpenContainer(ctx context.Context, key string) (Container, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.opened = append(m.opened, key)

	if err, ok := m.failing[key]; ok {
		return nil, err
	}

	data, ok := m.containers[key]
	if !ok {
		return nil, wdberrors.ErrNotFound.WithDetail("path", m.Location(key))
	}

	return &mockContainer{
		Reader:  bytes.NewReader(data),
		storage: m,
		size:    int64(len(data)),
	}, nil
}

type mockContainer struct {
	*bytes.Reader
	storage *MockStorage
	size    int64
}

func (c *mockContainer) Seek(offset int64, whence int) (int64, error) {
	c.storage.mu.Lock()
	c.storage.seeks++
	c.storage.mu.Unlock()

	return c.Reader.Seek(offset, whence)
}

func (c *mockContainer) Size() int64 {
	return c.size
}

func (c *mockContainer) Close() error {
	return nil
}

var _ io.ReadSeekCloser = (*mockContainer)(nil)
