package store

import (
	"context"
	"sync"

	"attestgate/internal/registry/models"
	"attestgate/pkg/domain"
)

type recordKey struct {
	walletKey domain.Hash
	dataType  domain.DataType
}

// MemoryStore keeps records in a map. Callers serialize mutations through
// the shared transaction runner, so the mutex here only guards against
// concurrent readers.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[recordKey]models.Record
	position uint64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[recordKey]models.Record)}
}

func (s *MemoryStore) Get(_ context.Context, walletKey domain.Hash, dt domain.DataType) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordKey{walletKey, dt}]
	if !ok {
		return nil, ErrRecordNotFound
	}
	out := rec
	return &out, nil
}

func (s *MemoryStore) Put(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey{record.WalletKey, record.DataType}] = *record
	return nil
}

func (s *MemoryStore) AdvancePosition(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position++
	return s.position, nil
}
