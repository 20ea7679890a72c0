package repository

import (
	"reflect"
	"testing"

	"cuefm/model"
)

func newTimelineRepo(t *testing.T) *TimelineRepository {
	t.Helper()
	return NewTimelineRepository(t.TempDir())
}

func TestSaveReplacesMuteSetsAndDedupes(t *testing.T) {
	r := newTimelineRepo(t)

	state, err := r.Save(SaveOptions{
		MutedSchedules: []string{"a", "b", "a", "c", "b"},
		MutedSegments:  []string{"x", "x"},
	}, nil)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !reflect.DeepEqual(state.MutedSchedules, []string{"a", "b", "c"}) {
		t.Errorf("schedules not deduped in order: %v", state.MutedSchedules)
	}
	if !reflect.DeepEqual(state.MutedSegments, []string{"x"}) {
		t.Errorf("segments not deduped: %v", state.MutedSegments)
	}

	// A later save with nil sets clears them: the sets always fully replace.
	state, err = r.Save(SaveOptions{}, nil)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(state.MutedSchedules) != 0 || len(state.MutedSegments) != 0 {
		t.Errorf("mute sets not replaced: %+v", state)
	}
}

func TestSaveKeepsSegmentsAndRestrictionsWhenNil(t *testing.T) {
	r := newTimelineRepo(t)

	segs := []model.TimelineSegment{{ID: "seg-1", StartTime: "10:00:00", EndTime: "12:00:00"}}
	restr := model.Restrictions{"seg-1": {{SoundID: "s1", Time: "10:30:00"}}}
	if _, err := r.Save(SaveOptions{Segments: segs, SoundsBySegment: restr}, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	state, err := r.Save(SaveOptions{MutedSegments: []string{"seg-1"}}, nil)
	if err != nil {
		t.Fatalf("partial Save failed: %v", err)
	}
	if len(state.Segments) != 1 || state.Segments[0].ID != "seg-1" {
		t.Errorf("segments lost by partial save: %+v", state.Segments)
	}
	if _, ok := state.SoundsBySegment.For("seg-1"); !ok {
		t.Errorf("restrictions lost by partial save: %+v", state.SoundsBySegment)
	}
}

func TestSavePresetReferenceOnlyWhenSet(t *testing.T) {
	r := newTimelineRepo(t)

	id, name := "p1", "Show"
	state, err := r.Save(SaveOptions{SetPreset: true, ActivePresetID: &id, ActivePresetName: &name}, nil)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if state.ActivePresetID == nil || *state.ActivePresetID != "p1" {
		t.Errorf("active preset not set: %+v", state)
	}

	state, err = r.Save(SaveOptions{}, nil)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if state.ActivePresetID == nil {
		t.Error("active preset cleared by save that did not touch it")
	}

	state, err = r.Save(SaveOptions{SetPreset: true}, nil)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if state.ActivePresetID != nil || state.ActivePresetName != nil {
		t.Errorf("active preset not cleared: %+v", state)
	}
}

func TestApplyPresetKeepsMutes(t *testing.T) {
	r := newTimelineRepo(t)
	if _, err := r.Save(SaveOptions{MutedSegments: []string{"seg-old"}}, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	p := model.Preset{
		ID:   "p1",
		Name: "Show",
		Segments: []model.TimelineSegment{
			{ID: "seg-1", StartTime: "10:00:00", EndTime: "12:00:00"},
		},
		SoundsBySegment: model.Restrictions{"seg-1": {}},
	}
	state, err := r.ApplyPreset(p)
	if err != nil {
		t.Fatalf("ApplyPreset failed: %v", err)
	}
	if state.ActivePresetID == nil || *state.ActivePresetID != "p1" {
		t.Errorf("active preset not recorded: %+v", state)
	}
	if len(state.Segments) != 1 || state.Segments[0].ID != "seg-1" {
		t.Errorf("segments not copied: %+v", state.Segments)
	}
	if !state.SegmentMuted("seg-old") {
		t.Error("mute overlay lost by apply")
	}
}

func TestApplyPresetIsValueCopy(t *testing.T) {
	r := newTimelineRepo(t)

	p := model.Preset{
		ID:       "p1",
		Name:     "Show",
		Segments: []model.TimelineSegment{{ID: "seg-1", StartTime: "10:00:00", EndTime: "12:00:00"}},
	}
	if _, err := r.ApplyPreset(p); err != nil {
		t.Fatalf("ApplyPreset failed: %v", err)
	}

	// Mutating the caller's preset afterwards must not affect stored state.
	p.Segments[0].StartTime = "00:00:00"

	state, _, err := r.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if state.Segments[0].StartTime != "10:00:00" {
		t.Errorf("timeline aliases the caller's preset: %+v", state.Segments)
	}
}

func TestPropagatePresetOnlyWhenActive(t *testing.T) {
	r := newTimelineRepo(t)

	p := model.Preset{ID: "p1", Name: "Show", Segments: []model.TimelineSegment{{ID: "seg-1"}}}

	// Not active yet: no write, no version bump.
	_, before, err := r.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	state, applied, err := r.PropagatePreset(p)
	if err != nil {
		t.Fatalf("PropagatePreset failed: %v", err)
	}
	if applied || state != nil {
		t.Errorf("inactive preset must not propagate: applied=%v", applied)
	}
	if _, after, _ := r.Get(); after != before {
		t.Errorf("version bumped by skipped propagate: %d -> %d", before, after)
	}

	if _, err := r.ApplyPreset(p); err != nil {
		t.Fatalf("ApplyPreset failed: %v", err)
	}

	p.Name = "Show v2"
	p.Segments = []model.TimelineSegment{{ID: "seg-2"}}
	state, applied, err = r.PropagatePreset(p)
	if err != nil {
		t.Fatalf("PropagatePreset failed: %v", err)
	}
	if !applied {
		t.Fatal("active preset must propagate")
	}
	if state.ActivePresetName == nil || *state.ActivePresetName != "Show v2" {
		t.Errorf("name not propagated: %+v", state)
	}
	if len(state.Segments) != 1 || state.Segments[0].ID != "seg-2" {
		t.Errorf("segments not propagated: %+v", state.Segments)
	}
}
