package http

import (
	"net/http"

	"github.com/shist-app/shist/internal/shist/service"
	"github.com/shist-app/shist/pkg/httpx"
)

type ConnectionsHandler struct {
	ConnectionService *service.ConnectionService
}

// HandleList handles GET /v1/connections.
func (h *ConnectionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	conns, err := h.ConnectionService.ConnectionsForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]ConnectionResponse, 0, len(conns))
	for _, c := range conns {
		out = append(out, toConnectionResponse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /v1/connections/{id}.
func (h *ConnectionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.ConnectionService.RemoveConnection(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
