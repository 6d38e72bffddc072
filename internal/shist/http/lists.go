package http

import (
	"encoding/json"
	"net/http"

	"github.com/shist-app/shist/internal/shist/service"
	"github.com/shist-app/shist/pkg/httpx"
)

type ListsHandler struct {
	ListService *service.ListService
	ItemService *service.ItemService
}

type listRequest struct {
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

// HandleCreate handles POST /v1/lists.
func (h *ListsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	list, err := h.ListService.CreateList(r.Context(), userID, req.Name, req.Public)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	view, err := h.ListService.GetList(r.Context(), userID, list.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toListResponse(view))
}

// HandleList handles GET /v1/lists.
func (h *ListsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	views, err := h.ListService.ListsForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]ListResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toListResponse(v))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /v1/lists/{id}.
func (h *ListsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	view, err := h.ListService.GetList(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toListResponse(view))
}

// HandleUpdate handles PATCH /v1/lists/{id}.
func (h *ListsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	list, err := h.ListService.UpdateList(r.Context(), userID, r.PathValue("id"), req.Name, req.Public)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	view, err := h.ListService.GetList(r.Context(), userID, list.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toListResponse(view))
}

// HandleDelete handles DELETE /v1/lists/{id}.
func (h *ListsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.ListService.DeleteList(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleItems handles GET /v1/lists/{id}/items.
func (h *ListsHandler) HandleItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	items, err := h.ItemService.ItemsForList(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type addItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// HandleAddItem handles POST /v1/lists/{id}/items.
func (h *ListsHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	item, err := h.ItemService.AddItem(r.Context(), userID, r.PathValue("id"), req.Name, req.Category)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toItemResponse(item))
}
