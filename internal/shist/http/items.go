package http

import (
	"encoding/json"
	"net/http"

	"github.com/shist-app/shist/internal/shist/service"
	"github.com/shist-app/shist/pkg/httpx"
)

type ItemsHandler struct {
	ItemService *service.ItemService
}

type updateItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Done     bool   `json:"done"`
}

// HandleUpdate handles PATCH /v1/items/{id}.
func (h *ItemsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	item, err := h.ItemService.UpdateItem(r.Context(), userID, r.PathValue("id"), req.Name, req.Category, req.Done)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toItemResponse(item))
}

// HandleDelete handles DELETE /v1/items/{id}.
func (h *ItemsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.ItemService.DeleteItem(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
