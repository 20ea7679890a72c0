// Package timeline implements the pure cue-scheduling logic: time
// containment, the segment mapping derived from raw schedules, and the
// playback scope decision.
package timeline

// NormalizeTime expands 5-character "HH:MM" input to "HH:MM:SS" by
// appending ":00". Anything else is returned unchanged.
func NormalizeTime(t string) string {
	if len(t) == 5 {
		return t + ":00"
	}
	return t
}

// Contains reports whether t lies within [start, end], inclusive on both
// ends. The HH:MM:SS format is fixed-width and zero-padded, so lexical
// comparison is sufficient.
func Contains(t, start, end string) bool {
	t = NormalizeTime(t)
	start = NormalizeTime(start)
	end = NormalizeTime(end)
	return t >= start && t <= end
}
