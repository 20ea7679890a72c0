package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsCommittedWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, []string{"manifest.json"})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := atomicWrite(filepath.Join(dir, "manifest.json"), []byte(`{}`)); err != nil {
		t.Fatalf("atomicWrite failed: %v", err)
	}

	select {
	case ev := <-w.Events():
		if ev.Document != "manifest.json" {
			t.Errorf("unexpected document: %q", ev.Document)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event for a committed write")
	}
}

func TestWatcherIgnoresUnknownFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, []string{"manifest.json"})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json.123.tmp"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event for %q", ev.Document)
	case <-time.After(300 * time.Millisecond):
	}
}
