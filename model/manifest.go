package model

import "strings"

// Reserved category names. Both are created on first use by the favorite and
// hide flows and behave like ordinary categories in storage.
const (
	CategoryFavorites = "Favoriten"
	CategoryHidden    = "Ausgeblendet"
)

// Sound represents one uploaded audio cue in the catalog.
type Sound struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	URL          string  `json:"url"`
	FilePath     string  `json:"file_path"`
	Size         int64   `json:"size"`
	MimeType     string  `json:"mime_type"`
	Duration     float64 `json:"duration"` // seconds
	DisplayOrder int     `json:"display_order"`
	IsFavorite   bool    `json:"is_favorite"`
	CategoryID   *string `json:"category_id"`
}

// Schedule is a single time-of-day trigger owned by a sound. Schedules never
// outlive their sound.
type Schedule struct {
	ID         string  `json:"id"`
	SoundID    string  `json:"sound_id"`
	Time       string  `json:"time"` // HH:MM:SS, 24h
	Active     bool    `json:"active"`
	LastPlayed *string `json:"last_played"`
}

// Category groups sounds in the catalog. Names are unique case-insensitively.
type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
}

// Manifest is the primary document: the sound catalog, its schedules and
// categories, plus the write counter.
type Manifest struct {
	Version    int64      `json:"version"`
	Sounds     []Sound    `json:"sounds"`
	Schedules  []Schedule `json:"schedules"`
	Categories []Category `json:"categories"`
}

func (m *Manifest) DocVersion() int64     { return m.Version }
func (m *Manifest) SetDocVersion(v int64) { m.Version = v }

// Normalize defaults nil collections so a partially written or legacy
// document never propagates nil slices downstream.
func (m *Manifest) Normalize() {
	if m.Sounds == nil {
		m.Sounds = []Sound{}
	}
	if m.Schedules == nil {
		m.Schedules = []Schedule{}
	}
	if m.Categories == nil {
		m.Categories = []Category{}
	}
}

// SoundByID returns the sound with the given id, or nil.
func (m *Manifest) SoundByID(id string) *Sound {
	for i := range m.Sounds {
		if m.Sounds[i].ID == id {
			return &m.Sounds[i]
		}
	}
	return nil
}

// CategoryByID returns the category with the given id, or nil.
func (m *Manifest) CategoryByID(id string) *Category {
	for i := range m.Categories {
		if m.Categories[i].ID == id {
			return &m.Categories[i]
		}
	}
	return nil
}

// CategoryByName returns the category matching name case-insensitively, or
// nil. Names are unique by convention.
func (m *Manifest) CategoryByName(name string) *Category {
	for i := range m.Categories {
		if strings.EqualFold(m.Categories[i].Name, name) {
			return &m.Categories[i]
		}
	}
	return nil
}

// SchedulesForSound returns the schedules owned by a sound, in document order.
func (m *Manifest) SchedulesForSound(soundID string) []Schedule {
	var out []Schedule
	for _, s := range m.Schedules {
		if s.SoundID == soundID {
			out = append(out, s)
		}
	}
	return out
}
