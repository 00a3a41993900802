package gateway

import (
	"slices"
	"sync"
)

// MemoryStore keeps the most recent records up to a capacity.
type MemoryStore struct {
	lock     sync.Mutex
	records  []Record
	capacity int
}

func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{capacity: capacity}
}

func (s *MemoryStore) String() string {
	return "memory-store"
}

func (s *MemoryStore) Put(rec Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	rec.Payload = slices.Clone(rec.Payload)
	s.records = append(s.records, rec)
	if len(s.records) > s.capacity {
		s.records = slices.Delete(s.records, 0, len(s.records)-s.capacity)
	}
	return nil
}

func (s *MemoryStore) List(limit int) ([]Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return slices.Clone(lastN(s.records, limit)), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
