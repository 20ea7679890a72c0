package repository

import (
	"errors"
	"path/filepath"

	"cuefm/model"
	"cuefm/store"
)

// TimelineRepository manages the current-state document consulted by
// playback-scope decisions.
type TimelineRepository struct {
	store *store.Store[*model.Timeline]
}

// NewTimelineRepository creates the repository over dataDir/timeline.json.
func NewTimelineRepository(dataDir string) *TimelineRepository {
	return &TimelineRepository{
		store: store.New(filepath.Join(dataDir, "timeline.json"), func() *model.Timeline {
			return &model.Timeline{}
		}),
	}
}

func (r *TimelineRepository) write(expected *int64, mutate func(*model.Timeline) error) (*model.Timeline, error) {
	if expected != nil {
		t, _, err := r.store.WriteCAS(*expected, mutate)
		return t, err
	}
	var lastErr error
	for attempt := 0; attempt < casRetries; attempt++ {
		_, ver, err := r.store.Read()
		if err != nil {
			return nil, err
		}
		t, _, err := r.store.WriteCAS(ver, mutate)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// Get returns the current timeline state and its version.
func (r *TimelineRepository) Get() (*model.Timeline, int64, error) {
	return r.store.Read()
}

// SaveOptions is a partial update of the timeline state. Mute sets always
// fully replace the stored sets; nil Segments keeps the stored segments,
// SetPreset false keeps the active preset reference, nil SoundsBySegment
// keeps the restriction map.
type SaveOptions struct {
	MutedSchedules   []string
	MutedSegments    []string
	Segments         []model.TimelineSegment
	SetPreset        bool
	ActivePresetID   *string
	ActivePresetName *string
	SoundsBySegment  model.Restrictions
}

// Save applies a partial update.
func (r *TimelineRepository) Save(opts SaveOptions, expected *int64) (*model.Timeline, error) {
	return r.write(expected, func(t *model.Timeline) error {
		t.MutedSchedules = dedupe(opts.MutedSchedules)
		t.MutedSegments = dedupe(opts.MutedSegments)
		if opts.Segments != nil {
			segs := make([]model.TimelineSegment, len(opts.Segments))
			copy(segs, opts.Segments)
			t.Segments = segs
		}
		if opts.SetPreset {
			t.ActivePresetID = opts.ActivePresetID
			t.ActivePresetName = opts.ActivePresetName
		}
		if opts.SoundsBySegment != nil {
			t.SoundsBySegment = opts.SoundsBySegment.Clone()
		}
		return nil
	})
}

// ApplyPreset value-copies the preset's shape into the timeline state and
// marks it active. Mute overlays survive the apply.
func (r *TimelineRepository) ApplyPreset(p model.Preset) (*model.Timeline, error) {
	cp := p.Clone()
	return r.write(nil, func(t *model.Timeline) error {
		t.Segments = cp.Segments
		t.SoundsBySegment = cp.SoundsBySegment
		if t.SoundsBySegment == nil {
			t.SoundsBySegment = model.Restrictions{}
		}
		id, name := cp.ID, cp.Name
		t.ActivePresetID = &id
		t.ActivePresetName = &name
		return nil
	})
}

// errSkipWrite aborts a mutate without persisting anything.
var errSkipWrite = errors.New("skip write")

// PropagatePreset pushes edits of the currently active preset into the
// timeline state. A preset that is not active leaves the state untouched
// and does not bump the document version.
func (r *TimelineRepository) PropagatePreset(p model.Preset) (*model.Timeline, bool, error) {
	t, err := r.write(nil, func(t *model.Timeline) error {
		if t.ActivePresetID == nil || *t.ActivePresetID != p.ID {
			return errSkipWrite
		}
		cp := p.Clone()
		t.Segments = cp.Segments
		if cp.SoundsBySegment != nil {
			t.SoundsBySegment = cp.SoundsBySegment
		}
		name := cp.Name
		t.ActivePresetName = &name
		return nil
	})
	if errors.Is(err, errSkipWrite) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// dedupe removes duplicates preserving first-occurrence order. A nil input
// becomes an empty set.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
