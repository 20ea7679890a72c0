package server

import (
	"net/http"

	"cuefm/core/live"
	"cuefm/logger"
)

// GetRemoteHandler returns the current command, or null when none exists.
// The polling host compares the command's ts against the last one it acted
// on; anything not strictly newer must be ignored.
func (h *APIHandler) GetRemoteHandler(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.remote.Get()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "command": cmd})
}

// SendRemoteHandler stores a command, overwriting the previous one, and
// pushes it to connected consoles.
func (h *APIHandler) SendRemoteHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action  string  `json:"action"`
		SoundID *string `json:"soundId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "invalid payload", "missing action")
		return
	}

	cmd, err := h.remote.Send(req.Action, req.SoundID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.hub.Broadcast(live.Event{Type: live.EventRemoteCommand, Command: &cmd})
	logger.Debug("[Remote] Command stored", logger.String("action", cmd.Action))
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "command": cmd})
}
