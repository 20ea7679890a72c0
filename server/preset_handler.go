package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"cuefm/logger"
	"cuefm/model"
)

// ListPresetsHandler returns all named presets.
func (h *APIHandler) ListPresetsHandler(w http.ResponseWriter, r *http.Request) {
	presets, _, err := h.presets.List()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"presets": presets})
}

type presetUpsertRequest struct {
	ID              string                  `json:"id"`
	Name            string                  `json:"name"`
	Segments        []model.TimelineSegment `json:"segments"`
	SoundsBySegment model.Restrictions      `json:"soundsBySegment"`
	ExpectedVersion *int64                  `json:"expectedVersion"`
}

// UpsertPresetHandler inserts or fully replaces a preset. When the preset
// is the currently active one, the edit is propagated into the live
// timeline state in the same request.
func (h *APIHandler) UpsertPresetHandler(w http.ResponseWriter, r *http.Request) {
	var req presetUpsertRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.Segments == nil {
		writeError(w, http.StatusBadRequest, "invalid payload", "name and segments are required")
		return
	}

	preset, err := h.presets.Upsert(model.Preset{
		ID:              req.ID,
		Name:            req.Name,
		Segments:        req.Segments,
		SoundsBySegment: req.SoundsBySegment,
	}, req.ExpectedVersion)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if _, applied, err := h.timelines.PropagatePreset(preset); err != nil {
		logger.Warn("[Presets] Propagate to timeline failed",
			logger.String("preset", preset.ID), logger.ErrorField(err))
	} else if applied {
		logger.Info("[Presets] Propagated active preset edit", logger.String("preset", preset.ID))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "preset": preset})
}

// DeletePresetHandler removes a preset; deleting an unknown id is a no-op.
func (h *APIHandler) DeletePresetHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.presets.Delete(id, versionParam(r)); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// ApplyPresetHandler value-copies a preset into the timeline state and
// marks it active.
func (h *APIHandler) ApplyPresetHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	preset, err := h.presets.Get(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	t, err := h.timelines.ApplyPreset(preset)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	logger.Info("[Presets] Applied", logger.String("preset", id))
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "timeline": t})
}
