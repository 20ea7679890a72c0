package server

import (
	"encoding/json"
	"net/http"

	"cuefm/core/timeline"
	"cuefm/model"
	"cuefm/repository"
)

// GetTimelineHandler returns the current timeline state document.
func (h *APIHandler) GetTimelineHandler(w http.ResponseWriter, r *http.Request) {
	t, _, err := h.timelines.Get()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type timelineSaveRequest struct {
	MutedSchedules   []string                `json:"mutedSchedules"`
	MutedSegments    []string                `json:"mutedSegments"`
	Segments         []model.TimelineSegment `json:"segments"`
	ActivePresetID   json.RawMessage         `json:"activePresetId"`
	ActivePresetName json.RawMessage         `json:"activePresetName"`
	SoundsBySegment  model.Restrictions      `json:"soundsBySegment"`
	ExpectedVersion  *int64                  `json:"expectedVersion"`
}

// SaveTimelineHandler applies a partial save: mute sets always replace the
// stored sets; segments and soundsBySegment only replace when supplied; the
// active preset reference is replaced when either of its keys is present
// (both values are taken together, absent one meaning null).
func (h *APIHandler) SaveTimelineHandler(w http.ResponseWriter, r *http.Request) {
	var req timelineSaveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	opts := repository.SaveOptions{
		MutedSchedules:  req.MutedSchedules,
		MutedSegments:   req.MutedSegments,
		Segments:        req.Segments,
		SoundsBySegment: req.SoundsBySegment,
	}
	if len(req.ActivePresetID) > 0 || len(req.ActivePresetName) > 0 {
		opts.SetPreset = true
		opts.ActivePresetID = decodeNullableString(req.ActivePresetID)
		opts.ActivePresetName = decodeNullableString(req.ActivePresetName)
	}

	t, err := h.timelines.Save(opts, req.ExpectedVersion)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":               true,
		"mutedSchedules":   t.MutedSchedules,
		"mutedSegments":    t.MutedSegments,
		"segments":         t.Segments,
		"activePresetId":   t.ActivePresetID,
		"activePresetName": t.ActivePresetName,
		"soundsBySegment":  t.SoundsBySegment,
		"version":          t.Version,
	})
}

func decodeNullableString(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// MappingHandler derives the segment mapping from the current timeline
// segments and catalog schedules. The result is cached by the version pair
// it was computed from, so it never goes stale.
func (h *APIHandler) MappingHandler(w http.ResponseWriter, r *http.Request) {
	m, manifestVer, err := h.manifests.Get()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	t, timelineVer, err := h.timelines.Get()
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if cached, ok := h.mappings.Get(r.Context(), manifestVer, timelineVer); ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"soundsBySegment": cached})
		return
	}
	mapping := timeline.BuildMapping(t.Segments, m)
	h.mappings.Set(r.Context(), manifestVer, timelineVer, mapping)
	writeJSON(w, http.StatusOK, map[string]interface{}{"soundsBySegment": mapping})
}

// ScopeHandler answers whether a (sound, time) pair may play right now.
// Query parameters: soundId, time, scheduleId (optional), manual
// (optional, "1"/"true" marks a user-initiated preview, which bypasses
// mute state).
func (h *APIHandler) ScopeHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	soundID := q.Get("soundId")
	tm := q.Get("time")
	if soundID == "" || !validTime(tm) {
		writeError(w, http.StatusBadRequest, "invalid payload", "soundId and a HH:MM[:SS] time are required")
		return
	}
	manual := q.Get("manual") == "1" || q.Get("manual") == "true"

	t, _, err := h.timelines.Get()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	decision := timeline.Decide(t, soundID, tm, q.Get("scheduleId"), manual)
	writeJSON(w, http.StatusOK, decision)
}
