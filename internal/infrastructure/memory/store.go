package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-auth-otp/internal/domain"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time // zero means no expiry
}

// Store is a process-local record store. Expired entries are purged on access.
type Store[T any] struct {
	mu    sync.Mutex
	items map[string]entry[T]
	now   func() time.Time
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{items: make(map[string]entry[T]), now: time.Now}
}

func (s *Store[T]) Get(_ context.Context, key string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	if ok && !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.items, key)
		ok = false
	}
	if !ok {
		var zero T
		return zero, fmt.Errorf("record %q: %w", key, domain.ErrNotFound)
	}
	return e.value, nil
}

func (s *Store[T]) Set(_ context.Context, key string, v T, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry[T]{value: v}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.items[key] = e
	return nil
}

func (s *Store[T]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
