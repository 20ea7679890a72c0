package server

import (
	"strings"
	"testing"
)

func TestUniqueObjectName(t *testing.T) {
	name := uniqueObjectName("fanfare loud! (v2).mp3")
	if !strings.HasSuffix(name, ".mp3") {
		t.Errorf("extension lost: %q", name)
	}
	if strings.ContainsAny(name, " !()") {
		t.Errorf("unsafe characters survived: %q", name)
	}
	if name == uniqueObjectName("fanfare loud! (v2).mp3") {
		t.Error("two uploads of the same file must get distinct object names")
	}

	if !strings.HasPrefix(uniqueObjectName(".ogg"), "sound_") {
		t.Error("an empty base must fall back to a default")
	}
}

func TestValidTime(t *testing.T) {
	valid := []string{"00:00", "23:59:59", "18:30"}
	invalid := []string{"", "6:00", "18:30:", "half past six", "18:30:00:00"}

	for _, v := range valid {
		if !validTime(v) {
			t.Errorf("validTime(%q) = false, want true", v)
		}
	}
	for _, v := range invalid {
		if validTime(v) {
			t.Errorf("validTime(%q) = true, want false", v)
		}
	}
}
