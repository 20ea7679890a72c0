// Package store implements the versioned JSON document store every durable
// mutation funnels through: one file per logical document, optimistic
// concurrency via a per-document version counter, and atomic
// temp-write+rename persistence.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"cuefm/logger"
)

// Document is implemented by every versioned document type.
type Document interface {
	DocVersion() int64
	SetDocVersion(v int64)
	// Normalize defaults missing or malformed collections after load.
	Normalize()
}

// Store persists one JSON document of type T. All writers in this process
// are serialized by the store's mutex, so a read-mutate-persist cycle is a
// single atomic step in-process; cross-process writers are guarded by the
// version check alone.
type Store[T Document] struct {
	mu    sync.Mutex
	path  string
	fresh func() T
}

// New creates a store for the document at path. fresh must return an empty
// default document (version 0).
func New[T Document](path string, fresh func() T) *Store[T] {
	return &Store[T]{path: path, fresh: fresh}
}

// Path returns the document's on-disk location.
func (s *Store[T]) Path() string { return s.path }

// Read returns the current document and its version. A missing file yields
// the default document at version 0 and is self-healed by persisting it; a
// corrupt file yields the default without overwriting what is on disk.
func (s *Store[T]) Read() (T, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, healed, err := s.load()
	if err != nil {
		var zero T
		return zero, 0, err
	}
	if healed {
		if err := s.persist(doc); err != nil {
			var zero T
			return zero, 0, err
		}
	}
	return doc, doc.DocVersion(), nil
}

// Write loads the current document fresh, applies mutate and persists the
// result at version+1. Without a version check this is last-write-wins;
// callers that must not lose updates use WriteCAS.
func (s *Store[T]) Write(mutate func(T) error) (T, int64, error) {
	return s.write(nil, mutate)
}

// WriteCAS is Write guarded by the version the caller read: if the freshly
// loaded version differs from expected, nothing is written and ErrConflict
// is returned.
func (s *Store[T]) WriteCAS(expected int64, mutate func(T) error) (T, int64, error) {
	return s.write(&expected, mutate)
}

func (s *Store[T]) write(expected *int64, mutate func(T) error) (T, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	doc, _, err := s.load()
	if err != nil {
		return zero, 0, err
	}
	loaded := doc.DocVersion()
	if expected != nil && *expected != loaded {
		return zero, 0, fmt.Errorf("%w: expected version %d, document at %d", ErrConflict, *expected, loaded)
	}
	if err := mutate(doc); err != nil {
		return zero, 0, err
	}
	// Increment relative to the document actually loaded, not the caller's
	// expectation, so version numbers reflect the true write count.
	doc.SetDocVersion(loaded + 1)
	if err := s.persist(doc); err != nil {
		return zero, 0, err
	}
	return doc, loaded + 1, nil
}

// load reads and decodes the document. The bool result reports whether the
// file was missing and the default should be persisted back.
func (s *Store[T]) load() (T, bool, error) {
	doc := s.fresh()
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		doc.Normalize()
		return doc, true, nil
	}
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("read %s: %w", s.path, err)
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		// Malformed documents default rather than fail, but the broken file
		// stays on disk until the next successful write replaces it.
		logger.Warn("[Store] Malformed document, using defaults",
			logger.String("path", s.path), logger.ErrorField(err))
		doc = s.fresh()
	}
	doc.Normalize()
	return doc, false, nil
}

// persist serializes doc to a temp file in the target directory and renames
// it over the document path. A failure at any step leaves the previous
// document intact.
func (s *Store[T]) persist(doc T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrPersistence, s.path, err)
	}
	return atomicWrite(s.path, data)
}

// atomicWrite writes data to a temp file next to path and renames it into
// place. The temp file lives in the same directory so the rename never
// crosses filesystems.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", ErrPersistence, dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", ErrPersistence, path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write temp for %s: %v", ErrPersistence, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close temp for %s: %v", ErrPersistence, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename %s: %v", ErrPersistence, path, err)
	}
	return nil
}
