package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"weatherdesk/internal/records"
)

// ErrNotFound is returned when no record exists for a given id.
var ErrNotFound = errors.New("record not found")

// MemoryStore is a concurrency-safe in-memory record store. It backs local
// runs without a database and doubles as the test fixture.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[int64]records.Record
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:   make(map[int64]records.Record),
		nextID: 1,
	}
}

func (s *MemoryStore) Insert(_ context.Context, rec *records.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextID
	s.nextID++
	s.data[rec.ID] = *rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (records.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[id]
	if !ok {
		return records.Record{}, ErrNotFound
	}
	return rec, nil
}

// List returns records ordered by creation time descending, newest first,
// with id as the tie-break so ordering stays deterministic.
func (s *MemoryStore) List(_ context.Context, limit, offset int) ([]records.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]records.Record, 0, len(s.data))
	for _, rec := range s.data {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) Update(_ context.Context, rec records.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[rec.ID]; !ok {
		return ErrNotFound
	}
	s.data[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return ErrNotFound
	}
	delete(s.data, id)
	return nil
}
