// Package flagstore holds namespaced key-values attached to game documents.
//
// The platform persists per-document flags (tile overrides, the alsoFade
// toggle, scene defaults) as JSON attached to the document. Documents are
// kept here as raw JSON blobs: reads resolve through gjson, writes through
// sjson, so a document round-trips byte-for-byte except for the touched
// flag. Updates are applied sequentially, one document at a time.
package flagstore

import (
	"fmt"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Store maps document ids to their JSON flag blobs.
type Store struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// New creates an empty flag store.
func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

// Put installs a document's raw flag blob, replacing any existing one.
// A nil blob installs an empty document.
func (s *Store) Put(docID string, blob []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if blob == nil {
		blob = []byte(`{}`)
	}
	s.docs[docID] = blob
}

// Document returns a copy of a document's raw flag blob.
func (s *Store) Document(docID string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.docs[docID]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, true
}

// GetFlag reads a namespaced flag from a document. The second return is
// false when the document or the flag is absent.
func (s *Store) GetFlag(docID, namespace, key string) (any, bool) {
	s.mu.RLock()
	blob, ok := s.docs[docID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	result := gjson.GetBytes(blob, flagPath(namespace, key))
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

// GetBool reads a flag and coerces it to a boolean; absent or non-boolean
// flags read as false.
func (s *Store) GetBool(docID, namespace, key string) bool {
	value, ok := s.GetFlag(docID, namespace, key)
	if !ok {
		return false
	}
	b, _ := value.(bool)
	return b
}

// SetFlag writes a namespaced flag on a document, creating the document
// when it does not exist yet.
func (s *Store) SetFlag(docID, namespace, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, ok := s.docs[docID]
	if !ok {
		blob = []byte(`{}`)
	}

	updated, err := sjson.SetBytes(blob, flagPath(namespace, key), value)
	if err != nil {
		return fmt.Errorf("setting flag %s.%s on %s: %w", namespace, key, docID, err)
	}
	s.docs[docID] = updated
	return nil
}

// ClearFlag removes a namespaced flag from a document. Clearing an absent
// flag is a no-op.
func (s *Store) ClearFlag(docID, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, ok := s.docs[docID]
	if !ok {
		return nil
	}

	updated, err := sjson.DeleteBytes(blob, flagPath(namespace, key))
	if err != nil {
		return fmt.Errorf("clearing flag %s.%s on %s: %w", namespace, key, docID, err)
	}
	s.docs[docID] = updated
	return nil
}

// flagPath builds the gjson/sjson path for a namespaced flag.
func flagPath(namespace, key string) string {
	return "flags." + namespace + "." + key
}
