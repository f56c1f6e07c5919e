package repositories

import (
	"context"
	"sync"
)

// MemoryBlobStore keeps blobs in process memory. Used by the memory
// backend and as a fake in tests; FailSaves makes every Save fail.
type MemoryBlobStore struct {
	mu        sync.RWMutex
	blobs     map[string][]byte
	saveErr   error
	saveCount int
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (m *MemoryBlobStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryBlobStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[key] = stored
	m.saveCount++
	return nil
}

func (m *MemoryBlobStore) Ping(context.Context) error {
	return nil
}

// FailSaves makes subsequent saves return err; nil restores normal behavior
func (m *MemoryBlobStore) FailSaves(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

// SaveCount reports how many saves succeeded
func (m *MemoryBlobStore) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveCount
}
