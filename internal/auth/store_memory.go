package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process TokenStore for single-process deployments.
// All access goes through one RWMutex; resolve-after-revoke on the same
// token is therefore linearizable.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Record
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Record)}
}

func (s *MemoryStore) Put(_ context.Context, token string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[token]; ok && time.Now().Before(existing.Expiry) {
		return ErrTokenExists
	}
	s.sessions[token] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.sessions[token]
	return rec, ok, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// PurgeExpired drops all expired entries and returns how many were removed.
// Called periodically from the entrypoint's cron schedule; expired tokens are
// also dropped lazily on Resolve, so this only bounds memory growth.
func (s *MemoryStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for token, rec := range s.sessions {
		if now.After(rec.Expiry) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
