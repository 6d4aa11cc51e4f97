package chat

import (
	"log/slog"
	"net/http"

	"webstore/internal/ws"
)

// Ws upgrades the connection to the admin dashboard event stream.
func Ws(log *slog.Logger, hub *ws.Hub, auth ws.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, auth, log, w, r)
	}
}
