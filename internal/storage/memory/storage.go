package memory

import (
	"context"
	"sync"

	"github.com/mcoot/minibeans/internal/model"
	"github.com/mcoot/minibeans/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu     sync.RWMutex
	values map[storage.Key]string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		values: make(map[storage.Key]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) Load(ctx context.Context, key storage.Key) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", model.ErrNotFound
	}
	return v, nil
}

func (s *Storage) Save(ctx context.Context, key storage.Key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *Storage) Clear(ctx context.Context, key storage.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
