package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"cuefm/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is already wide open on the API; the websocket follows suit.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveHandler upgrades the connection and attaches it to the hub. The
// socket is push-only; clients that miss events fall back to polling.
func (h *APIHandler) LiveHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("[Live] Upgrade failed", logger.ErrorField(err))
		return
	}
	h.hub.Serve(conn)
}
