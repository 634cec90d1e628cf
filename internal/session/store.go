package session

import (
	"sync"
	"time"
)

// Store persists session-scoped state as JSON blobs under namespaced keys,
// each with an explicit expiry timestamp. A read of an expired entry is a
// miss, not an error. Embedding applications may supply their own
// implementation backed by whatever session storage they have.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, expiredAt time.Time)
	Delete(key string)
}

type memoryEntry struct {
	value     []byte
	expiredAt time.Time
}

// MemoryStore is the default in-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the stored value, treating expired entries as absent.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiredAt.IsZero() && !s.now().Before(e.expiredAt) {
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores the value until expiredAt. A zero expiredAt never expires.
func (s *MemoryStore) Set(key string, value []byte, expiredAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: value, expiredAt: expiredAt}
}

// Delete removes the entry.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}
