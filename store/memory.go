package store

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Memory is an in-memory KV.
type Memory struct {
	mu     sync.Mutex
	m      map[string][]byte
	closed bool
}

// NewMemory returns an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

// Get implements KV.
func (s *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	v, ok := s.m[key]
	return slices.Clone(v), ok, nil
}

// Set implements KV.
func (s *Memory) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.m[key] = slices.Clone(value)
	return nil
}

// Delete implements KV.
func (s *Memory) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.m, key)
	return nil
}

// Batch implements KV. fn works on a copy that replaces the content on success.
func (s *Memory) Batch(ctx context.Context, fn func(KV) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	work := &Memory{m: maps.Clone(s.m)}
	if err := fn(work); err != nil {
		return err
	}
	s.m = work.m
	return nil
}

// Close implements KV.
func (s *Memory) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
