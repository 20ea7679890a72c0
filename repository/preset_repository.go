package repository

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"cuefm/model"
	"cuefm/store"
)

// PresetRepository manages the named-preset document.
type PresetRepository struct {
	store *store.Store[*model.Presets]
}

// NewPresetRepository creates the repository over dataDir/presets.json.
func NewPresetRepository(dataDir string) *PresetRepository {
	return &PresetRepository{
		store: store.New(filepath.Join(dataDir, "presets.json"), func() *model.Presets {
			return &model.Presets{}
		}),
	}
}

func (r *PresetRepository) write(expected *int64, mutate func(*model.Presets) error) (*model.Presets, error) {
	if expected != nil {
		p, _, err := r.store.WriteCAS(*expected, mutate)
		return p, err
	}
	var lastErr error
	for attempt := 0; attempt < casRetries; attempt++ {
		_, ver, err := r.store.Read()
		if err != nil {
			return nil, err
		}
		p, _, err := r.store.WriteCAS(ver, mutate)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// List returns all presets and the document version.
func (r *PresetRepository) List() ([]model.Preset, int64, error) {
	doc, ver, err := r.store.Read()
	if err != nil {
		return nil, 0, err
	}
	return doc.Presets, ver, nil
}

// Get returns a deep copy of one preset.
func (r *PresetRepository) Get(id string) (model.Preset, error) {
	doc, _, err := r.store.Read()
	if err != nil {
		return model.Preset{}, err
	}
	p := doc.ByID(id)
	if p == nil {
		return model.Preset{}, fmt.Errorf("preset %s: %w", id, store.ErrNotFound)
	}
	return p.Clone(), nil
}

// Upsert inserts the preset if its id is unseen, otherwise fully replaces
// name and segments. The restriction map is replaced only when the caller
// supplied one (nil keeps the stored map, matching the partial upsert on
// the wire). Stored values are deep copies so later edits by the caller
// never alias the document.
func (r *PresetRepository) Upsert(p model.Preset, expected *int64) (model.Preset, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	stored := p.Clone()
	_, err := r.write(expected, func(doc *model.Presets) error {
		if existing := doc.ByID(stored.ID); existing != nil {
			existing.Name = stored.Name
			existing.Segments = stored.Segments
			if stored.SoundsBySegment != nil {
				existing.SoundsBySegment = stored.SoundsBySegment
			}
			stored = existing.Clone()
			return nil
		}
		doc.Presets = append(doc.Presets, stored)
		return nil
	})
	if err != nil {
		return model.Preset{}, err
	}
	return stored, nil
}

// Delete removes a preset. Deleting an absent id is a no-op.
func (r *PresetRepository) Delete(id string, expected *int64) error {
	_, err := r.write(expected, func(doc *model.Presets) error {
		kept := doc.Presets[:0]
		for _, p := range doc.Presets {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		doc.Presets = kept
		return nil
	})
	return err
}
