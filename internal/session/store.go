// Package session keeps the per-user workflow state between steps.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the key/value surface the workflow reads and writes.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
}

// Memory is an in-process Store for a single session.
type Memory struct {
	ID        string
	CreatedAt time.Time

	mu     sync.Mutex
	values map[string]any
}

func NewMemory() *Memory {
	return &Memory{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		values:    make(map[string]any),
	}
}

func (m *Memory) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
}

// Len reports how many keys are held.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.values)
}

// Value fetches key from s as a T. A missing key or a value of another type
// yields the zero T and false.
func Value[T any](s Store, key string) (T, bool) {
	var zero T
	v, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
