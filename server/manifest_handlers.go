package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"cuefm/logger"
	"cuefm/model"
	"cuefm/repository"
)

// supportedAudioTypes lists the accepted upload mime types.
var supportedAudioTypes = map[string]struct{}{
	"audio/mpeg":  {}, // .mp3
	"audio/wav":   {}, // .wav
	"audio/x-wav": {},
	"audio/ogg":   {}, // .ogg
	"audio/mp4":   {}, // .m4a
	"audio/x-m4a": {},
}

// GetManifestHandler returns the full catalog document including its
// version, which clients thread back as expectedVersion on mutations.
func (h *APIHandler) GetManifestHandler(w http.ResponseWriter, r *http.Request) {
	m, _, err := h.manifests.Get()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type soundInsertRequest struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	URL             string  `json:"url"`
	FilePath        string  `json:"file_path"`
	Size            int64   `json:"size"`
	MimeType        string  `json:"mime_type"`
	Duration        float64 `json:"duration"`
	CategoryID      *string `json:"category_id"`
	ExpectedVersion *int64  `json:"expectedVersion"`
}

// InsertSoundHandler adds a catalog entry for an already stored blob.
// Uploads normally go through UploadSoundHandler instead.
func (h *APIHandler) InsertSoundHandler(w http.ResponseWriter, r *http.Request) {
	var req soundInsertRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid payload", "name is required")
		return
	}
	m, snd, err := h.manifests.InsertSound(model.Sound{
		ID:         req.ID,
		Name:       req.Name,
		URL:        req.URL,
		FilePath:   req.FilePath,
		Size:       req.Size,
		MimeType:   req.MimeType,
		Duration:   req.Duration,
		CategoryID: req.CategoryID,
	}, req.ExpectedVersion)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "sound": snd, "version": m.Version})
}

type soundUpdateRequest struct {
	Name            *string         `json:"name"`
	URL             *string         `json:"url"`
	FilePath        *string         `json:"file_path"`
	IsFavorite      *bool           `json:"is_favorite"`
	CategoryID      json.RawMessage `json:"category_id"`
	ExpectedVersion *int64          `json:"expectedVersion"`
}

// UpdateSoundHandler applies a partial update. category_id distinguishes
// "absent" (keep) from "null" (clear the reference).
func (h *APIHandler) UpdateSoundHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req soundUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	upd := repository.SoundUpdate{
		Name:       req.Name,
		URL:        req.URL,
		FilePath:   req.FilePath,
		IsFavorite: req.IsFavorite,
	}
	if len(req.CategoryID) > 0 {
		upd.SetCategory = true
		if string(req.CategoryID) != "null" {
			var cat string
			if err := json.Unmarshal(req.CategoryID, &cat); err != nil {
				writeError(w, http.StatusBadRequest, "invalid payload", "category_id must be a string or null")
				return
			}
			upd.CategoryID = &cat
		}
	}
	m, err := h.manifests.UpdateSound(id, upd, req.ExpectedVersion)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "sound": m.SoundByID(id), "version": m.Version})
}

// DeleteSoundHandler removes a sound and its schedules.
func (h *APIHandler) DeleteSoundHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	m, err := h.manifests.DeleteSound(id, versionParam(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "version": m.Version})
}

// ReorderSoundsHandler applies manual sort positions in one write.
func (h *APIHandler) ReorderSoundsHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Orders          []repository.SoundOrder `json:"orders"`
		ExpectedVersion *int64                  `json:"expectedVersion"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Orders) == 0 {
		writeError(w, http.StatusBadRequest, "invalid payload", "orders is required")
		return
	}
	m, err := h.manifests.ReorderSounds(req.Orders, req.ExpectedVersion)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "version": m.Version})
}

type scheduleInsertRequest struct {
	SoundID         string `json:"sound_id"`
	Time            string `json:"time"`
	Active          *bool  `json:"active"`
	ExpectedVersion *int64 `json:"expectedVersion"`
}

// InsertScheduleHandler adds a trigger time to a sound.
func (h *APIHandler) InsertScheduleHandler(w http.ResponseWriter, r *http.Request) {
	var req scheduleInsertRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SoundID == "" || !validTime(req.Time) {
		writeError(w, http.StatusBadRequest, "invalid payload", "sound_id and a HH:MM[:SS] time are required")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	m, sch, err := h.manifests.InsertSchedule(model.Schedule{
		SoundID: req.SoundID,
		Time:    req.Time,
		Active:  active,
	}, req.ExpectedVersion)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "schedule": sch, "version": m.Version})
}

type scheduleUpdateRequest struct {
	Time            *string `json:"time"`
	Active          *bool   `json:"active"`
	LastPlayed      *string `json:"last_played"`
	ExpectedVersion *int64  `json:"expectedVersion"`
}

// UpdateScheduleHandler changes a schedule's time, active flag or
// last-played stamp.
func (h *APIHandler) UpdateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req scheduleUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Time != nil && !validTime(*req.Time) {
		writeError(w, http.StatusBadRequest, "invalid payload", "time must be HH:MM[:SS]")
		return
	}
	m, err := h.manifests.UpdateSchedule(id, repository.ScheduleUpdate{
		Time:       req.Time,
		Active:     req.Active,
		LastPlayed: req.LastPlayed,
	}, req.ExpectedVersion)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "version": m.Version})
}

// DeleteScheduleHandler removes a schedule.
func (h *APIHandler) DeleteScheduleHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	m, err := h.manifests.DeleteSchedule(id, versionParam(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "version": m.Version})
}

// InsertCategoryHandler creates a category; inserting an existing name
// (case-insensitively) returns the existing one.
func (h *APIHandler) InsertCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		ExpectedVersion *int64 `json:"expectedVersion"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	m, cat, err := h.manifests.InsertCategory(req.Name, req.ExpectedVersion)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "category": cat, "version": m.Version})
}

// RenameCategoryHandler renames a category.
func (h *APIHandler) RenameCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		Name            string `json:"name"`
		ExpectedVersion *int64 `json:"expectedVersion"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	m, err := h.manifests.RenameCategory(id, req.Name, req.ExpectedVersion)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "category": m.CategoryByID(id), "version": m.Version})
}

// DeleteCategoryHandler deletes a category and clears references to it.
func (h *APIHandler) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	m, err := h.manifests.DeleteCategory(id, versionParam(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "version": m.Version})
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)

// uniqueObjectName builds a collision-free object name from the original
// filename, mirroring what the console did client-side.
func uniqueObjectName(originalName string) string {
	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(originalName, ext)
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	if len(base) > 100 {
		base = base[:100]
	}
	if base == "" {
		base = "sound"
	}
	return fmt.Sprintf("%s_%d_%s%s", base, time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}

// UploadSoundHandler stores an uploaded audio blob and inserts the catalog
// entry in one request. Expected multipart form fields:
// - soundFile: the audio file
// - name: display name (optional, defaults to the filename)
// - duration: seconds, decimal (optional; the console decodes it client-side)
// - expectedVersion: manifest CAS pin (optional)
func (h *APIHandler) UploadSoundHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32MB max memory
		writeError(w, http.StatusBadRequest, "invalid payload", fmt.Sprintf("failed to parse multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("soundFile")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload", "missing 'soundFile' in form")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if _, ok := supportedAudioTypes[mimeType]; !ok {
		writeError(w, http.StatusBadRequest, "invalid payload", fmt.Sprintf("unsupported audio type %q", mimeType))
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	var duration float64
	if raw := r.FormValue("duration"); raw != "" {
		duration, _ = strconv.ParseFloat(raw, 64)
	}
	var expected *int64
	if raw := r.FormValue("expectedVersion"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			expected = &v
		}
	}

	objectName := uniqueObjectName(header.Filename)
	url, err := h.blobs.Save(r.Context(), objectName, file, header.Size, mimeType)
	if err != nil {
		logger.Error("[Upload] Blob store failed", logger.String("object", objectName), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "internal error", "failed to store audio file")
		return
	}

	m, snd, err := h.manifests.InsertSound(model.Sound{
		Name:     name,
		URL:      url,
		FilePath: objectName,
		Size:     header.Size,
		MimeType: mimeType,
		Duration: duration,
	}, expected)
	if err != nil {
		// The manifest write failed; don't leave the blob orphaned.
		if rmErr := h.blobs.Remove(r.Context(), objectName); rmErr != nil {
			logger.Warn("[Upload] Orphan cleanup failed", logger.String("object", objectName), logger.ErrorField(rmErr))
		}
		writeStoreError(w, err)
		return
	}

	logger.Info("[Upload] Stored sound",
		logger.String("id", snd.ID),
		logger.String("object", objectName),
		logger.Int64("size", header.Size))
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "sound": snd, "version": m.Version})
}
