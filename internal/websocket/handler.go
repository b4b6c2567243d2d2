package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// Serve upgrades the request to a WebSocket and runs it as a client of the
// given room. Callers must have already authenticated the host and checked
// that they own the event the room belongs to.
func Serve(hub *Hub, room string, logger *slog.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Accept(w, r, nil)
	if err != nil {
		logger.Warn("websocket accept", "error", err)
		return
	}

	client := NewClient(hub, room, conn)
	client.Run(r.Context())
}
