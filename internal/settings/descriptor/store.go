package descriptor

import (
	"fmt"
	"sync"
)

// ErrDuplicateKey is returned when adding a descriptor whose key is already
// in the store.
var ErrDuplicateKey = fmt.Errorf("setting already defined")

// Store holds the authored settings list. Insertion order is preserved;
// the pipeline processes and reports settings in that order.
type Store struct {
	mu    sync.RWMutex
	order []string
	byKey map[string]*Descriptor
}

// NewStore creates an empty definition store.
func NewStore() *Store {
	return &Store{byKey: make(map[string]*Descriptor)}
}

// Add appends a descriptor to the store.
func (s *Store) Add(d Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byKey[d.Key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, d.Key)
	}

	held := d
	s.byKey[d.Key] = &held
	s.order = append(s.order, d.Key)
	return nil
}

// AddAll appends a list of descriptors, stopping at the first duplicate.
func (s *Store) AddAll(list []Descriptor) error {
	for _, d := range list {
		if err := s.Add(d); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the descriptor for a key.
func (s *Store) Get(key string) (*Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byKey[key]
	return d, ok
}

// Has reports whether a key is defined.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byKey[key]
	return ok
}

// All returns copies of every descriptor in insertion order.
func (s *Store) All() []Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Descriptor, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.byKey[key].Clone())
	}
	return out
}

// Len returns the number of stored descriptors.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
