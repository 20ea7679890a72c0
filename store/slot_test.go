package store

import (
	"os"
	"path/filepath"
	"testing"
)

type testCmd struct {
	Action string `json:"action"`
	TS     int64  `json:"ts"`
}

func TestSlotEmptyReturnsNotOK(t *testing.T) {
	slot := NewSlot[testCmd](filepath.Join(t.TempDir(), "slot.json"))

	_, ok, err := slot.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected ok=false for missing slot file")
	}
}

func TestSlotLastWriteWins(t *testing.T) {
	slot := NewSlot[testCmd](filepath.Join(t.TempDir(), "slot.json"))

	if err := slot.Put(testCmd{Action: "play", TS: 1}); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	if err := slot.Put(testCmd{Action: "pause", TS: 2}); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	cmd, ok, err := slot.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true")
	}
	if cmd.Action != "pause" || cmd.TS != 2 {
		t.Errorf("expected latest command, got %+v", cmd)
	}
}

func TestSlotCorruptPayloadReturnsNotOK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slot.json")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	slot := NewSlot[testCmd](path)

	_, ok, err := slot.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected ok=false for corrupt slot payload")
	}
}
