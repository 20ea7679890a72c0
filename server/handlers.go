package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"cuefm/cache"
	"cuefm/config"
	"cuefm/core/auth"
	"cuefm/core/live"
	"cuefm/logger"
	"cuefm/repository"
	"cuefm/storage"
	"cuefm/store"
)

// APIHandler carries the request handlers' shared dependencies.
type APIHandler struct {
	manifests *repository.ManifestRepository
	presets   *repository.PresetRepository
	timelines *repository.TimelineRepository
	remote    *repository.CommandChannel
	issuer    *auth.TokenIssuer
	blobs     storage.Provider
	hub       *live.Hub
	mappings  *cache.MappingCache
	cfg       *config.Config
}

// NewAPIHandler creates the handler set.
func NewAPIHandler(
	manifests *repository.ManifestRepository,
	presets *repository.PresetRepository,
	timelines *repository.TimelineRepository,
	remote *repository.CommandChannel,
	issuer *auth.TokenIssuer,
	blobs storage.Provider,
	hub *live.Hub,
	mappings *cache.MappingCache,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		manifests: manifests,
		presets:   presets,
		timelines: timelines,
		remote:    remote,
		issuer:    issuer,
		blobs:     blobs,
		hub:       hub,
		mappings:  mappings,
		cfg:       cfg,
	}
}

type contextKey string

const (
	ctxUsername contextKey = "username"
	ctxRole     contextKey = "role"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("[API] Encode response failed", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

// writeStoreError maps repository/store failures onto the HTTP error
// taxonomy. Conflicts get 409 so clients know a re-read and retry is the
// fix, not a different payload.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "version conflict", err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusBadRequest, "not found", err.Error())
	case errors.Is(err, store.ErrInvalid):
		writeError(w, http.StatusBadRequest, "invalid payload", err.Error())
	case errors.Is(err, store.ErrPersistence):
		writeError(w, http.StatusInternalServerError, "persistence failure", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// versionParam reads an optional expectedVersion query parameter, used by
// DELETE requests where a body is unconventional.
func versionParam(r *http.Request) *int64 {
	raw := r.URL.Query().Get("expectedVersion")
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

var timePattern = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)

func validTime(t string) bool { return timePattern.MatchString(t) }

// AuthMiddleware checks for a valid bearer token and stores the session's
// username and role in the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := h.sessionClaims(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUsername, claims.Username)
		ctx = context.WithValue(ctx, ctxRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// AdminMiddleware is AuthMiddleware restricted to the admin role. Every
// mutation of the catalog, presets and timeline goes through it.
func (h *APIHandler) AdminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if RoleFromContext(r.Context()) != auth.RoleAdmin {
			writeError(w, http.StatusUnauthorized, "unauthorized", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sessionClaims extracts and validates the bearer token, if any.
func (h *APIHandler) sessionClaims(r *http.Request) (*auth.Claims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}
	claims, err := h.issuer.ParseToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

// RoleFromContext returns the session role, or "" outside a session.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(ctxRole).(string)
	return role
}

// UsernameFromContext returns the session username, or "".
func UsernameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(ctxUsername).(string)
	return name
}
