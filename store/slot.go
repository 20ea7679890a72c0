package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Slot persists a single unversioned value with last-write-wins semantics.
// Used for the remote command relay, where only the newest value matters
// and there is no CAS: every Put unconditionally overwrites the slot.
type Slot[T any] struct {
	mu   sync.Mutex
	path string
}

// NewSlot creates a slot backed by the file at path.
func NewSlot[T any](path string) *Slot[T] {
	return &Slot[T]{path: path}
}

// Get returns the stored value. ok is false when the slot is empty or its
// contents are unreadable.
func (s *Slot[T]) Get() (T, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var val T
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return val, false, nil
	}
	if err != nil {
		return val, false, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(raw) == 0 {
		return val, false, nil
	}
	if err := json.Unmarshal(raw, &val); err != nil {
		var zero T
		return zero, false, nil
	}
	return val, true, nil
}

// Put overwrites the slot atomically (temp write + rename).
func (s *Slot[T]) Put(val T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrPersistence, s.path, err)
	}
	return atomicWrite(s.path, data)
}
