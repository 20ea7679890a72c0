package model

// Preset is a frozen, named snapshot of a timeline shape plus an explicit
// per-segment (sound, time) whitelist. Segments are value copies, never
// references into the live timeline.
type Preset struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Segments        []TimelineSegment `json:"segments"`
	SoundsBySegment Restrictions      `json:"soundsBySegment,omitempty"`
}

// Clone deep-copies the preset so edits to the copy never alias the
// original's nested containers.
func (p Preset) Clone() Preset {
	cp := Preset{ID: p.ID, Name: p.Name}
	cp.Segments = make([]TimelineSegment, len(p.Segments))
	copy(cp.Segments, p.Segments)
	cp.SoundsBySegment = p.SoundsBySegment.Clone()
	return cp
}

// Presets is the named-preset collection document.
type Presets struct {
	Version int64    `json:"version"`
	Presets []Preset `json:"presets"`
}

func (p *Presets) DocVersion() int64     { return p.Version }
func (p *Presets) SetDocVersion(v int64) { p.Version = v }

func (p *Presets) Normalize() {
	if p.Presets == nil {
		p.Presets = []Preset{}
	}
}

// ByID returns the preset with the given id, or nil.
func (p *Presets) ByID(id string) *Preset {
	for i := range p.Presets {
		if p.Presets[i].ID == id {
			return &p.Presets[i]
		}
	}
	return nil
}
