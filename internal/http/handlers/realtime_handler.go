// README: Websocket endpoint streaming change events to signed-in browsers.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"carrental/internal/http/middleware"
	"carrental/internal/infra"
	"carrental/internal/modules/realtime"
)

type RealtimeHandler struct {
	hub      *realtime.Hub
	verifier infra.TokenVerifier
	admins   middleware.AdminChecker
	upgrader websocket.Upgrader
}

// NewRealtimeHandler accepts connections from any origin listed in origins; an
// empty list allows every origin.
func NewRealtimeHandler(hub *realtime.Hub, verifier infra.TokenVerifier, admins middleware.AdminChecker, origins []string) *RealtimeHandler {
	h := &RealtimeHandler{hub: hub, verifier: verifier, admins: admins}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(origins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, o := range origins {
				if strings.EqualFold(o, origin) {
					return true
				}
			}
			return false
		},
	}
	return h
}

// Connect answers GET /api/realtime?token=<id token>. Browsers cannot set
// headers on websocket requests, so the token travels in the query.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		writeError(c, http.StatusUnauthorized, "missing token")
		return
	}
	token, err := h.verifier.VerifyIDToken(c.Request.Context(), raw)
	if err != nil || token == nil || token.UID == "" {
		writeError(c, http.StatusUnauthorized, "invalid token")
		return
	}
	middleware.SetCaller(c, token)
	admin, err := middleware.IsAdmin(c, h.admins)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the client.
		return
	}
	h.hub.Serve(conn, token.UID, admin)
}
