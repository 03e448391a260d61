package sessionstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/weisyn/bargain/internal/core/negotiation"
)

// MemoryStore 进程内存储，保存编码后的快照以隔离调用方的修改
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Create(_ context.Context, id string, n *negotiation.Negotiation) error {
	data, err := encode(n)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, id)
	}
	s.data[id] = data
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*negotiation.Negotiation, error) {
	s.mu.RLock()
	data, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return decode(data)
}

func (s *MemoryStore) Update(_ context.Context, id string, n *negotiation.Negotiation) error {
	data, err := encode(n)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.data[id] = data
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]*negotiation.Negotiation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*negotiation.Negotiation, 0, len(s.data))
	for _, data := range s.data {
		n, err := decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	sortByCreation(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
