package server

import (
	"net/http"
	"strings"
	"time"

	"cuefm/core/auth"
	"cuefm/logger"
)

// remoteUsername is the special login that shares the admin password but
// only receives trigger rights.
const remoteUsername = "remote"

// LoginHandler authenticates the host console or a remote client. Both
// roles verify against the single configured password hash; the username
// decides the role.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid payload", "username and password are required")
		return
	}

	isAdmin := strings.EqualFold(req.Username, h.cfg.AdminUsername)
	isRemote := strings.EqualFold(req.Username, remoteUsername)

	if (!isAdmin && !isRemote) || h.cfg.AdminPasswordHash == "" ||
		!auth.CheckPasswordHash(req.Password, h.cfg.AdminPasswordHash) {
		// Slow down brute-force attempts.
		time.Sleep(300 * time.Millisecond)
		logger.Warn("[Login] Rejected", logger.String("username", req.Username))
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	role := auth.RoleRemote
	if isAdmin {
		role = auth.RoleAdmin
	}
	token, err := h.issuer.GenerateToken(req.Username, role)
	if err != nil {
		logger.Error("[Login] Token generation failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}

	logger.Info("[Login] Success", logger.String("username", req.Username), logger.String("role", role))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"role":  role,
		"token": token,
	})
}

// MeHandler reports session status. Unauthenticated requests get
// authenticated=false rather than a 401, so the console can probe freely.
func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.sessionClaims(r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"authenticated": false,
			"role":          nil,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"role":          claims.Role,
	})
}
