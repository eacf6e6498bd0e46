package storage

import (
	"context"
	"sync"
)

// Compile-time interface check.
var _ Slot = (*memorySlot)(nil)

type memorySlot struct {
	mu    sync.Mutex
	data  []byte
	found bool
}

// NewMemorySlot creates an in-process Slot, used for tests and
// ephemeral sessions.
func NewMemorySlot() Slot {
	return &memorySlot{}
}

func (s *memorySlot) Read(_ context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.found {
		return nil, false, nil
	}

	// Copy so callers cannot mutate the stored value.
	out := make([]byte, len(s.data))
	copy(out, s.data)

	return out, true, nil
}

func (s *memorySlot) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]byte, len(data))
	copy(s.data, data)
	s.found = true

	return nil
}
