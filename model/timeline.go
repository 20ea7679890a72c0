package model

// TimelineSegment is a named time-of-day interval. Bounds are inclusive.
// Overlap and gaps between segments are legal.
type TimelineSegment struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Label     string `json:"time,omitempty"` // display label, e.g. "18:00:00-18:30:00"
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// SoundRef is one (sound, time) entry of a segment's restriction list.
type SoundRef struct {
	SoundID string `json:"soundId"`
	Time    string `json:"time"`
}

// Restrictions maps segment ids to explicit (sound, time) whitelists.
// Key presence is load-bearing: an absent key means the segment is
// unrestricted, a present key restricts visibility to exactly the listed
// pairs, even when the list is empty.
type Restrictions map[string][]SoundRef

// For returns the whitelist for a segment and whether the segment is
// restricted at all.
func (r Restrictions) For(segmentID string) ([]SoundRef, bool) {
	refs, ok := r[segmentID]
	return refs, ok
}

// Allows reports whether the (soundID, time) pair is visible in the segment.
func (r Restrictions) Allows(segmentID, soundID, tm string) bool {
	refs, restricted := r.For(segmentID)
	if !restricted {
		return true
	}
	for _, ref := range refs {
		if ref.SoundID == soundID && ref.Time == tm {
			return true
		}
	}
	return false
}

// Clone deep-copies the restriction map so callers can mutate the copy
// without aliasing the original's nested slices.
func (r Restrictions) Clone() Restrictions {
	if r == nil {
		return nil
	}
	out := make(Restrictions, len(r))
	for k, refs := range r {
		cp := make([]SoundRef, len(refs))
		copy(cp, refs)
		out[k] = cp
	}
	return out
}

// Timeline is the current-state document: segments (possibly loaded from the
// last-applied preset), the active preset reference, the restriction map and
// the mute overlays.
type Timeline struct {
	Version          int64             `json:"version"`
	MutedSchedules   []string          `json:"mutedSchedules"`
	MutedSegments    []string          `json:"mutedSegments"`
	Segments         []TimelineSegment `json:"segments"`
	ActivePresetID   *string           `json:"activePresetId"`
	ActivePresetName *string           `json:"activePresetName"`
	SoundsBySegment  Restrictions      `json:"soundsBySegment"`
}

func (t *Timeline) DocVersion() int64     { return t.Version }
func (t *Timeline) SetDocVersion(v int64) { t.Version = v }

func (t *Timeline) Normalize() {
	if t.MutedSchedules == nil {
		t.MutedSchedules = []string{}
	}
	if t.MutedSegments == nil {
		t.MutedSegments = []string{}
	}
	if t.Segments == nil {
		t.Segments = []TimelineSegment{}
	}
	if t.SoundsBySegment == nil {
		t.SoundsBySegment = Restrictions{}
	}
}

// ScheduleMuted reports whether a schedule id is in the mute overlay.
func (t *Timeline) ScheduleMuted(scheduleID string) bool {
	for _, id := range t.MutedSchedules {
		if id == scheduleID {
			return true
		}
	}
	return false
}

// SegmentMuted reports whether a segment id is in the mute overlay.
func (t *Timeline) SegmentMuted(segmentID string) bool {
	for _, id := range t.MutedSegments {
		if id == segmentID {
			return true
		}
	}
	return false
}
