package timeline

import (
	"testing"

	"cuefm/model"
)

func scopeState() *model.Timeline {
	return &model.Timeline{
		Segments: []model.TimelineSegment{
			{ID: "seg-a", StartTime: "10:00:00", EndTime: "12:00:00"},
			{ID: "seg-b", StartTime: "18:00:00", EndTime: "19:00:00"},
		},
		SoundsBySegment: model.Restrictions{
			"seg-b": {{SoundID: "s1", Time: "18:30:00"}},
		},
		MutedSchedules: []string{},
		MutedSegments:  []string{},
	}
}

func TestDecideNoSegmentIsInScope(t *testing.T) {
	d := Decide(scopeState(), "s1", "03:00:00", "", false)
	if !d.InScope {
		t.Errorf("expected in scope, got %+v", d)
	}
	if d.Reason != ReasonNoSegment || d.SegmentID != "" {
		t.Errorf("unexpected decision: %+v", d)
	}
}

func TestDecideUnrestrictedSegment(t *testing.T) {
	d := Decide(scopeState(), "anything", "11:00:00", "", false)
	if !d.InScope || d.SegmentID != "seg-a" || d.Reason != ReasonUnrestricted {
		t.Errorf("unexpected decision: %+v", d)
	}
}

func TestDecideWhitelist(t *testing.T) {
	state := scopeState()

	d := Decide(state, "s1", "18:30:00", "", false)
	if !d.InScope || d.Reason != ReasonListed {
		t.Errorf("listed pair should be in scope: %+v", d)
	}

	d = Decide(state, "s1", "18:45:00", "", false)
	if d.InScope || d.Reason != ReasonNotListed {
		t.Errorf("pair with wrong time must be rejected: %+v", d)
	}

	d = Decide(state, "s2", "18:30:00", "", false)
	if d.InScope || d.Reason != ReasonNotListed {
		t.Errorf("unlisted sound must be rejected: %+v", d)
	}
}

func TestDecideEmptyWhitelistBlocksEverything(t *testing.T) {
	state := scopeState()
	state.SoundsBySegment["seg-a"] = []model.SoundRef{}

	d := Decide(state, "s1", "11:00:00", "", false)
	if d.InScope {
		t.Errorf("empty whitelist must block all pairs: %+v", d)
	}
}

func TestDecideMutesBlockAutomaticOnly(t *testing.T) {
	state := scopeState()
	state.MutedSegments = []string{"seg-a"}

	d := Decide(state, "s1", "11:00:00", "sch-1", false)
	if d.InScope || d.Reason != ReasonSegmentMuted {
		t.Errorf("muted segment must block automatic trigger: %+v", d)
	}

	d = Decide(state, "s1", "11:00:00", "sch-1", true)
	if !d.InScope || d.Reason != ReasonManualOverride {
		t.Errorf("manual play must bypass segment mute: %+v", d)
	}
}

func TestDecideScheduleMute(t *testing.T) {
	state := scopeState()
	state.MutedSchedules = []string{"sch-1"}

	d := Decide(state, "s1", "11:00:00", "sch-1", false)
	if d.InScope || d.Reason != ReasonScheduleMuted {
		t.Errorf("muted schedule must block automatic trigger: %+v", d)
	}

	// A different schedule of the same sound is unaffected.
	d = Decide(state, "s1", "11:00:00", "sch-2", false)
	if !d.InScope {
		t.Errorf("other schedules must stay in scope: %+v", d)
	}

	d = Decide(state, "s1", "11:00:00", "sch-1", true)
	if !d.InScope || d.Reason != ReasonManualOverride {
		t.Errorf("manual play must bypass schedule mute: %+v", d)
	}
}

func TestDecideWhitelistStillAppliesToManual(t *testing.T) {
	state := scopeState()

	d := Decide(state, "s2", "18:30:00", "", true)
	if d.InScope {
		t.Errorf("manual play never bypasses the whitelist: %+v", d)
	}
}

func TestDecideFirstContainingSegmentWins(t *testing.T) {
	state := scopeState()
	// Overlapping segment listed after seg-a; seg-a must decide.
	state.Segments = append(state.Segments, model.TimelineSegment{
		ID: "seg-overlap", StartTime: "11:00:00", EndTime: "13:00:00",
	})
	state.SoundsBySegment["seg-overlap"] = []model.SoundRef{}

	d := Decide(state, "s1", "11:30:00", "", false)
	if !d.InScope || d.SegmentID != "seg-a" {
		t.Errorf("first containing segment must win: %+v", d)
	}
}
