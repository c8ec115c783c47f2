package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation.
// Profiles are lost on restart; use the SQLite backend for durability.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Put stores a profile document, replacing any existing profile with
// the same name.
func (s *MemoryStore) Put(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	stored := &Record{
		Name:        record.Name,
		Data:        append([]byte(nil), record.Data...),
		Description: record.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if existing, ok := s.records[record.Name]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	s.records[record.Name] = stored
	return nil
}

// Get retrieves a profile by name.
func (s *MemoryStore) Get(_ context.Context, name string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[name]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(record), nil
}

// List returns all stored profiles ordered by name.
func (s *MemoryStore) List(_ context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*Record, 0, len(s.records))
	for _, record := range s.records {
		records = append(records, copyRecord(record))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
	return records, nil
}

// Delete removes a profile by name.
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[name]; !ok {
		return ErrNotFound
	}
	delete(s.records, name)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func copyRecord(record *Record) *Record {
	out := *record
	out.Data = append([]byte(nil), record.Data...)
	return &out
}
