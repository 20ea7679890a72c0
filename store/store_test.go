package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type testDoc struct {
	Version int64    `json:"version"`
	Items   []string `json:"items"`
}

func (d *testDoc) DocVersion() int64     { return d.Version }
func (d *testDoc) SetDocVersion(v int64) { d.Version = v }
func (d *testDoc) Normalize() {
	if d.Items == nil {
		d.Items = []string{}
	}
}

func newTestStore(t *testing.T) *Store[*testDoc] {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	return New(path, func() *testDoc { return &testDoc{} })
}

func TestReadSelfHealsMissingDocument(t *testing.T) {
	s := newTestStore(t)

	doc, ver, err := s.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if ver != 0 {
		t.Errorf("expected version 0, got %d", ver)
	}
	if doc.Items == nil {
		t.Error("expected normalized empty items")
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Errorf("expected default document persisted: %v", err)
	}
}

func TestWriteIncrementsVersionByOne(t *testing.T) {
	s := newTestStore(t)

	for i := 1; i <= 5; i++ {
		_, ver, err := s.Write(func(d *testDoc) error {
			d.Items = append(d.Items, "x")
			return nil
		})
		if err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
		if ver != int64(i) {
			t.Errorf("write %d: expected version %d, got %d", i, i, ver)
		}
	}

	doc, ver, err := s.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if ver != 5 {
		t.Errorf("expected final version 5, got %d", ver)
	}
	if len(doc.Items) != 5 {
		t.Errorf("expected 5 items, got %d", len(doc.Items))
	}
}

func TestWriteCASRejectsStaleVersion(t *testing.T) {
	s := newTestStore(t)

	_, ver, err := s.Write(func(d *testDoc) error {
		d.Items = append(d.Items, "first")
		return nil
	})
	if err != nil {
		t.Fatalf("setup write failed: %v", err)
	}

	// A second writer commits in between.
	if _, _, err := s.Write(func(d *testDoc) error {
		d.Items = append(d.Items, "second")
		return nil
	}); err != nil {
		t.Fatalf("interleaved write failed: %v", err)
	}

	_, _, err = s.WriteCAS(ver, func(d *testDoc) error {
		d.Items = []string{"clobbered"}
		return nil
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// The conflicting attempt must not have written anything.
	doc, _, err := s.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(doc.Items) != 2 || doc.Items[1] != "second" {
		t.Errorf("conflicting write leaked: %v", doc.Items)
	}
}

func TestConcurrentCASExactlyOneWins(t *testing.T) {
	s := newTestStore(t)

	_, ver, err := s.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	const writers = 8
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _, err := s.WriteCAS(ver, func(d *testDoc) error {
				d.Items = append(d.Items, "winner")
				return nil
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly 1 winner, got %d", wins)
	}
	if conflicts != writers-1 {
		t.Errorf("expected %d conflicts, got %d", writers-1, conflicts)
	}
}

func TestMutateErrorWritesNothing(t *testing.T) {
	s := newTestStore(t)

	if _, _, err := s.Write(func(d *testDoc) error {
		d.Items = append(d.Items, "keep")
		return nil
	}); err != nil {
		t.Fatalf("setup write failed: %v", err)
	}

	boom := errors.New("boom")
	_, _, err := s.Write(func(d *testDoc) error {
		d.Items = nil
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutate error, got %v", err)
	}

	doc, ver, err := s.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if ver != 1 || len(doc.Items) != 1 {
		t.Errorf("failed mutate left a write behind: version=%d items=%v", ver, doc.Items)
	}
}

func TestCorruptDocumentDefaultsWithoutOverwriting(t *testing.T) {
	s := newTestStore(t)

	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	doc, ver, err := s.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if ver != 0 || len(doc.Items) != 0 {
		t.Errorf("expected default document, got version=%d items=%v", ver, doc.Items)
	}

	// The broken file stays until a successful write replaces it.
	raw, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(raw) != "{not json" {
		t.Errorf("Read overwrote the corrupt file: %q", raw)
	}
}

func TestPersistedDocumentIsValidJSON(t *testing.T) {
	s := newTestStore(t)

	if _, _, err := s.Write(func(d *testDoc) error {
		d.Items = append(d.Items, "a", "b")
		return nil
	}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	raw, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var onDisk testDoc
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatalf("persisted document is not valid JSON: %v", err)
	}
	if onDisk.Version != 1 || len(onDisk.Items) != 2 {
		t.Errorf("unexpected on-disk state: %+v", onDisk)
	}
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		if _, _, err := s.Write(func(d *testDoc) error { return nil }); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != filepath.Base(s.Path()) {
			t.Errorf("leftover file in data dir: %s", e.Name())
		}
	}
}
