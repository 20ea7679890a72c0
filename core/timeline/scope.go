package timeline

import "cuefm/model"

// Decision explains a playback scope check.
type Decision struct {
	InScope   bool   `json:"inScope"`
	SegmentID string `json:"segmentId,omitempty"`
	Reason    string `json:"reason"`
}

const (
	ReasonNoSegment      = "no segment contains this time"
	ReasonUnrestricted   = "segment is unrestricted"
	ReasonListed         = "pair is whitelisted for the segment"
	ReasonNotListed      = "pair is not in the segment's whitelist"
	ReasonSegmentMuted   = "segment is muted"
	ReasonScheduleMuted  = "schedule is muted"
	ReasonManualOverride = "manual play bypasses mute state"
)

// Decide resolves whether the (soundID, time) pair may play under the
// current timeline state.
//
// Mute overlays apply only to the automatic trigger path: a manual preview
// request (manual == true) is never blocked by mutes, only by the
// restriction whitelist. scheduleID may be empty when the caller has no
// schedule in hand (e.g. a remote play command).
func Decide(state *model.Timeline, soundID, tm, scheduleID string, manual bool) Decision {
	tm = NormalizeTime(tm)

	var containing *model.TimelineSegment
	for i := range state.Segments {
		seg := &state.Segments[i]
		if Contains(tm, seg.StartTime, seg.EndTime) {
			containing = seg
			break
		}
	}
	if containing == nil {
		// No segment claims the time: nothing restricts it either.
		return Decision{InScope: true, Reason: ReasonNoSegment}
	}

	if !state.SoundsBySegment.Allows(containing.ID, soundID, tm) {
		return Decision{InScope: false, SegmentID: containing.ID, Reason: ReasonNotListed}
	}

	if !manual {
		if state.SegmentMuted(containing.ID) {
			return Decision{InScope: false, SegmentID: containing.ID, Reason: ReasonSegmentMuted}
		}
		if scheduleID != "" && state.ScheduleMuted(scheduleID) {
			return Decision{InScope: false, SegmentID: containing.ID, Reason: ReasonScheduleMuted}
		}
	}

	reason := ReasonUnrestricted
	if _, restricted := state.SoundsBySegment.For(containing.ID); restricted {
		reason = ReasonListed
	}
	if manual && (state.SegmentMuted(containing.ID) || (scheduleID != "" && state.ScheduleMuted(scheduleID))) {
		reason = ReasonManualOverride
	}
	return Decision{InScope: true, SegmentID: containing.ID, Reason: reason}
}
