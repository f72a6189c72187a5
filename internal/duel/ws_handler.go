package duel

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/lexiduel/lexiduel/internal/identity"
	httperrors "github.com/lexiduel/lexiduel/pkg/http/errors"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: implement proper origin checking for production
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WebSocketHandler returns the /ws/duels endpoint: it authenticates the token
// query parameter, upgrades the connection and hands it to the hub.
func (h *Handler) WebSocketHandler(resolver *identity.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Missing token")
			return
		}

		playerID, err := resolver.Resolve(token)
		if err != nil {
			h.logger.Warn().Err(err).Msg("WebSocket token validation failed")
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid token")
			return
		}

		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
			return
		}

		h.HandleConnection(conn, playerID)
	}
}
