package repository

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"cuefm/core/timeline"
	"cuefm/model"
	"cuefm/store"
)

// casRetries bounds automatic retries of an unpinned read-mutate-write
// before the Conflict is surfaced to the caller.
const casRetries = 3

// ManifestRepository owns the sound catalog document: sounds, schedules and
// categories. Every mutation is a CAS write; stale overwrites of the
// catalog would corrupt it, so last-write-wins is never used here.
type ManifestRepository struct {
	store *store.Store[*model.Manifest]
}

// NewManifestRepository creates the repository over dataDir/manifest.json.
func NewManifestRepository(dataDir string) *ManifestRepository {
	return &ManifestRepository{
		store: store.New(filepath.Join(dataDir, "manifest.json"), func() *model.Manifest {
			return &model.Manifest{}
		}),
	}
}

// Get returns the current manifest and its version.
func (r *ManifestRepository) Get() (*model.Manifest, int64, error) {
	return r.store.Read()
}

// write runs mutate under CAS. When the caller pinned a version, a mismatch
// surfaces immediately as Conflict. Otherwise the repository reads the
// current version itself and retries a bounded number of times when racing
// another writer.
func (r *ManifestRepository) write(expected *int64, mutate func(*model.Manifest) error) (*model.Manifest, int64, error) {
	if expected != nil {
		return r.store.WriteCAS(*expected, mutate)
	}
	var lastErr error
	for attempt := 0; attempt < casRetries; attempt++ {
		_, ver, err := r.store.Read()
		if err != nil {
			return nil, 0, err
		}
		m, newVer, err := r.store.WriteCAS(ver, mutate)
		if err == nil {
			return m, newVer, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, 0, err
		}
		lastErr = err
	}
	return nil, 0, lastErr
}

// SoundUpdate is a partial update of a sound. Nil fields are left alone;
// SetCategory controls whether CategoryID (possibly nil) replaces the
// current category reference.
type SoundUpdate struct {
	Name        *string
	URL         *string
	FilePath    *string
	IsFavorite  *bool
	CategoryID  *string
	SetCategory bool
}

// SoundOrder is one entry of a reorder request.
type SoundOrder struct {
	ID           string `json:"id"`
	DisplayOrder int    `json:"display_order"`
}

// InsertSound adds a sound to the catalog. A missing id is generated;
// display_order defaults to the end of the list.
func (r *ManifestRepository) InsertSound(s model.Sound, expected *int64) (*model.Manifest, model.Sound, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	var inserted model.Sound
	m, _, err := r.write(expected, func(m *model.Manifest) error {
		if m.SoundByID(s.ID) != nil {
			return fmt.Errorf("%w: sound %s already exists", store.ErrInvalid, s.ID)
		}
		if s.DisplayOrder == 0 {
			s.DisplayOrder = len(m.Sounds)
		}
		if s.CategoryID != nil && m.CategoryByID(*s.CategoryID) == nil {
			return fmt.Errorf("category %s: %w", *s.CategoryID, store.ErrNotFound)
		}
		m.Sounds = append(m.Sounds, s)
		inserted = s
		return nil
	})
	return m, inserted, err
}

// UpdateSound applies a partial update to a sound.
func (r *ManifestRepository) UpdateSound(id string, upd SoundUpdate, expected *int64) (*model.Manifest, error) {
	m, _, err := r.write(expected, func(m *model.Manifest) error {
		snd := m.SoundByID(id)
		if snd == nil {
			return fmt.Errorf("sound %s: %w", id, store.ErrNotFound)
		}
		if upd.Name != nil {
			snd.Name = *upd.Name
		}
		if upd.URL != nil {
			snd.URL = *upd.URL
		}
		if upd.FilePath != nil {
			snd.FilePath = *upd.FilePath
		}
		if upd.IsFavorite != nil {
			snd.IsFavorite = *upd.IsFavorite
		}
		if upd.SetCategory {
			if upd.CategoryID != nil && m.CategoryByID(*upd.CategoryID) == nil {
				return fmt.Errorf("category %s: %w", *upd.CategoryID, store.ErrNotFound)
			}
			snd.CategoryID = upd.CategoryID
		}
		return nil
	})
	return m, err
}

// DeleteSound removes a sound and, in the same write, every schedule it
// owns. Schedules never outlive their sound.
func (r *ManifestRepository) DeleteSound(id string, expected *int64) (*model.Manifest, error) {
	m, _, err := r.write(expected, func(m *model.Manifest) error {
		if m.SoundByID(id) == nil {
			return fmt.Errorf("sound %s: %w", id, store.ErrNotFound)
		}
		sounds := m.Sounds[:0]
		for _, s := range m.Sounds {
			if s.ID != id {
				sounds = append(sounds, s)
			}
		}
		m.Sounds = sounds
		schedules := m.Schedules[:0]
		for _, sch := range m.Schedules {
			if sch.SoundID != id {
				schedules = append(schedules, sch)
			}
		}
		m.Schedules = schedules
		return nil
	})
	return m, err
}

// ReorderSounds applies the given display orders in one write. Unknown ids
// are ignored rather than failing the whole reorder.
func (r *ManifestRepository) ReorderSounds(orders []SoundOrder, expected *int64) (*model.Manifest, error) {
	m, _, err := r.write(expected, func(m *model.Manifest) error {
		for _, o := range orders {
			if snd := m.SoundByID(o.ID); snd != nil {
				snd.DisplayOrder = o.DisplayOrder
			}
		}
		return nil
	})
	return m, err
}

// ScheduleUpdate is a partial update of a schedule.
type ScheduleUpdate struct {
	Time       *string
	Active     *bool
	LastPlayed *string
}

// InsertSchedule adds a trigger time for an existing sound. The time is
// normalized to HH:MM:SS.
func (r *ManifestRepository) InsertSchedule(sch model.Schedule, expected *int64) (*model.Manifest, model.Schedule, error) {
	if sch.ID == "" {
		sch.ID = uuid.NewString()
	}
	sch.Time = timeline.NormalizeTime(sch.Time)
	var inserted model.Schedule
	m, _, err := r.write(expected, func(m *model.Manifest) error {
		if m.SoundByID(sch.SoundID) == nil {
			return fmt.Errorf("sound %s: %w", sch.SoundID, store.ErrNotFound)
		}
		m.Schedules = append(m.Schedules, sch)
		inserted = sch
		return nil
	})
	return m, inserted, err
}

// UpdateSchedule applies a partial update to a schedule.
func (r *ManifestRepository) UpdateSchedule(id string, upd ScheduleUpdate, expected *int64) (*model.Manifest, error) {
	m, _, err := r.write(expected, func(m *model.Manifest) error {
		for i := range m.Schedules {
			if m.Schedules[i].ID != id {
				continue
			}
			if upd.Time != nil {
				m.Schedules[i].Time = timeline.NormalizeTime(*upd.Time)
			}
			if upd.Active != nil {
				m.Schedules[i].Active = *upd.Active
			}
			if upd.LastPlayed != nil {
				m.Schedules[i].LastPlayed = upd.LastPlayed
			}
			return nil
		}
		return fmt.Errorf("schedule %s: %w", id, store.ErrNotFound)
	})
	return m, err
}

// DeleteSchedule removes a schedule.
func (r *ManifestRepository) DeleteSchedule(id string, expected *int64) (*model.Manifest, error) {
	m, _, err := r.write(expected, func(m *model.Manifest) error {
		for i := range m.Schedules {
			if m.Schedules[i].ID == id {
				m.Schedules = append(m.Schedules[:i], m.Schedules[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("schedule %s: %w", id, store.ErrNotFound)
	})
	return m, err
}

// InsertCategory adds a category. Names are unique case-insensitively; an
// insert with an existing name returns the existing category unchanged,
// which is what lets the reserved names be "created on first use" by any
// number of racing clients.
func (r *ManifestRepository) InsertCategory(name string, expected *int64) (*model.Manifest, model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.Category{}, fmt.Errorf("%w: category name is required", store.ErrInvalid)
	}
	var result model.Category
	m, _, err := r.write(expected, func(m *model.Manifest) error {
		if existing := m.CategoryByName(name); existing != nil {
			result = *existing
			return nil
		}
		result = model.Category{
			ID:           uuid.NewString(),
			Name:         name,
			DisplayOrder: len(m.Categories),
		}
		m.Categories = append(m.Categories, result)
		return nil
	})
	return m, result, err
}

// RenameCategory changes a category's name, keeping names unique.
func (r *ManifestRepository) RenameCategory(id, name string, expected *int64) (*model.Manifest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", store.ErrInvalid)
	}
	m, _, err := r.write(expected, func(m *model.Manifest) error {
		if existing := m.CategoryByName(name); existing != nil && existing.ID != id {
			return fmt.Errorf("%w: category name %q already in use", store.ErrInvalid, name)
		}
		cat := m.CategoryByID(id)
		if cat == nil {
			return fmt.Errorf("category %s: %w", id, store.ErrNotFound)
		}
		cat.Name = name
		return nil
	})
	return m, err
}

// DeleteCategory removes a category and nulls category_id on every sound
// that referenced it, in the same write.
func (r *ManifestRepository) DeleteCategory(id string, expected *int64) (*model.Manifest, error) {
	m, _, err := r.write(expected, func(m *model.Manifest) error {
		if m.CategoryByID(id) == nil {
			return fmt.Errorf("category %s: %w", id, store.ErrNotFound)
		}
		cats := m.Categories[:0]
		for _, c := range m.Categories {
			if c.ID != id {
				cats = append(cats, c)
			}
		}
		m.Categories = cats
		for i := range m.Sounds {
			if m.Sounds[i].CategoryID != nil && *m.Sounds[i].CategoryID == id {
				m.Sounds[i].CategoryID = nil
			}
		}
		return nil
	})
	return m, err
}
