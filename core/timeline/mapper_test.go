package timeline

import (
	"reflect"
	"testing"

	"cuefm/model"
)

func mappingFixture() ([]model.TimelineSegment, *model.Manifest) {
	segments := []model.TimelineSegment{
		{ID: "seg-morning", Title: "Morning", StartTime: "10:00:00", EndTime: "14:00:00"},
		{ID: "seg-evening", Title: "Evening", StartTime: "18:00", EndTime: "18:30"},
	}
	manifest := &model.Manifest{
		Sounds: []model.Sound{
			{ID: "s1", Name: "Fanfare"},
			{ID: "s2", Name: "Gong"},
		},
		Schedules: []model.Schedule{
			{ID: "sch-1", SoundID: "s1", Time: "12:00:00", Active: true},
			{ID: "sch-2", SoundID: "s1", Time: "18:15", Active: true},
			{ID: "sch-3", SoundID: "s2", Time: "09:00:00", Active: true},
			{ID: "sch-4", SoundID: "s2", Time: "13:30:00", Active: true},
		},
	}
	return segments, manifest
}

func TestBuildMappingAssignsSchedulesToSegments(t *testing.T) {
	segments, manifest := mappingFixture()

	mapping := BuildMapping(segments, manifest)

	morning, ok := mapping.For("seg-morning")
	if !ok {
		t.Fatal("expected a key for seg-morning")
	}
	want := []model.SoundRef{
		{SoundID: "s1", Time: "12:00:00"},
		{SoundID: "s2", Time: "13:30:00"},
	}
	if !reflect.DeepEqual(morning, want) {
		t.Errorf("seg-morning mapping = %v, want %v", morning, want)
	}

	evening, ok := mapping.For("seg-evening")
	if !ok {
		t.Fatal("expected a key for seg-evening")
	}
	if len(evening) != 1 || evening[0].SoundID != "s1" || evening[0].Time != "18:15:00" {
		t.Errorf("seg-evening mapping = %v, want the normalized 18:15:00 ref", evening)
	}
}

func TestBuildMappingEmptySegmentGetsEmptyList(t *testing.T) {
	segments := []model.TimelineSegment{
		{ID: "seg-night", StartTime: "22:00:00", EndTime: "23:00:00"},
	}
	_, manifest := mappingFixture()

	mapping := BuildMapping(segments, manifest)

	refs, ok := mapping.For("seg-night")
	if !ok {
		t.Fatal("every given segment must appear as a key")
	}
	if len(refs) != 0 {
		t.Errorf("expected empty list, got %v", refs)
	}
}

func TestBuildMappingKeepsOneEntryPerSchedule(t *testing.T) {
	segments := []model.TimelineSegment{
		{ID: "seg-all", StartTime: "00:00:00", EndTime: "23:59:59"},
	}
	manifest := &model.Manifest{
		Sounds: []model.Sound{{ID: "s1"}},
		Schedules: []model.Schedule{
			{ID: "a", SoundID: "s1", Time: "08:00:00"},
			{ID: "b", SoundID: "s1", Time: "20:00:00"},
		},
	}

	mapping := BuildMapping(segments, manifest)
	refs, _ := mapping.For("seg-all")
	if len(refs) != 2 {
		t.Errorf("expected one entry per schedule, got %v", refs)
	}
}

func TestBuildMappingIsDeterministic(t *testing.T) {
	segments, manifest := mappingFixture()

	first := BuildMapping(segments, manifest)
	second := BuildMapping(segments, manifest)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same input produced different mappings:\n%v\n%v", first, second)
	}
}
