// Package session keeps server-side login state and one-shot flash messages.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by a Store for unknown or expired sessions
var ErrNotFound = errors.New("session not found")

// Flash severities
const (
	SeveritySuccess = "success"
	SeverityInfo    = "info"
	SeverityDanger  = "danger"
)

// Flash is a message shown once on the next rendered page
type Flash struct {
	Severity string `json:"tipo"`
	Text     string `json:"texto"`
}

// Data is the persisted part of a session
type Data struct {
	AccountID string `json:"accountId,omitempty"`
	Flash     *Flash `json:"flash,omitempty"`
}

// Store persists session data under an opaque id
type Store interface {
	Get(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	data    Data
	expires time.Time
}

// MemoryStore keeps sessions in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the stored data
func (s *MemoryStore) Get(_ context.Context, id string) (*Data, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(entry.expires) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	data := entry.data
	if entry.data.Flash != nil {
		flash := *entry.data.Flash
		data.Flash = &flash
	}
	return &data, nil
}

// Save stores a copy of data for ttl
func (s *MemoryStore) Save(_ context.Context, id string, data *Data, ttl time.Duration) error {
	entry := memoryEntry{data: *data, expires: s.now().Add(ttl)}
	if data.Flash != nil {
		flash := *data.Flash
		entry.data.Flash = &flash
	}

	s.mu.Lock()
	s.entries[id] = entry
	s.mu.Unlock()
	return nil
}

// Delete removes a session; unknown ids are ignored
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
