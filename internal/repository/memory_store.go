package repository

import (
	"context"
	"sync"

	"github.com/nikolayk812/orderpipe/internal/port"
)

// MemoryStore is an in-process KeyValueStore with an optional byte quota,
// shaped after browser local storage.
type MemoryStore struct {
	mu          sync.Mutex
	values      map[string]string
	quotaBytes  int
	unavailable bool
}

var _ port.KeyValueStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store; quotaBytes <= 0 disables the quota.
func NewMemoryStore(quotaBytes int) *MemoryStore {
	return &MemoryStore{
		values:     make(map[string]string),
		quotaBytes: quotaBytes,
	}
}

// SetAvailable toggles whether the store accepts any calls.
func (s *MemoryStore) SetAvailable(available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unavailable = !available
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unavailable {
		return "", false, port.ErrStorageUnavailable
	}

	value, ok := s.values[key]
	return value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unavailable {
		return port.ErrStorageUnavailable
	}

	if s.quotaBytes > 0 && usedWithout(s.values, key)+len(value) > s.quotaBytes {
		return port.ErrQuotaExceeded
	}

	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unavailable {
		return port.ErrStorageUnavailable
	}

	delete(s.values, key)
	return nil
}
