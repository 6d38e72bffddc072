package http

import (
	"context"
	"net/http"

	"github.com/shist-app/shist/internal/shist/domain"
	"github.com/shist-app/shist/internal/shist/service"
	"github.com/shist-app/shist/internal/shist/ws"

	"golang.org/x/net/websocket"
)

// maxWSFrameBytes caps a single inbound websocket frame. Subscription
// frames are tiny; anything bigger is garbage.
const maxWSFrameBytes = 4 << 10

type WSHandler struct {
	Hub           *ws.Hub
	AccessService *service.AccessService
}

// ServeHTTP upgrades GET /v1/ws. The authn middleware has already run, so
// the user id is in the request context; each connection gets a session
// whose subscribe checks run view_list for that user.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	websocket.Handler(func(conn *websocket.Conn) {
		defer conn.Close()
		conn.MaxPayloadBytes = maxWSFrameBytes

		peer := ws.NewPeer(conn)
		session := &ws.Session{
			Hub:  h.Hub,
			Peer: peer,
			Authorize: func(ctx context.Context, listID string) error {
				return h.AccessService.RequirePermission(ctx, userID, listID, domain.PermViewList)
			},
		}
		session.Run(r.Context(), conn)
	}).ServeHTTP(w, r)
}
