package http

import (
	"encoding/json"
	"net/http"

	"github.com/shist-app/shist/internal/shist/service"
	"github.com/shist-app/shist/pkg/httpx"
)

type InvitationsHandler struct {
	InvitationService *service.InvitationService
}

type createInvitationRequest struct {
	Type   string `json:"type"`
	ListID string `json:"list_id"`
	Role   string `json:"role"`
}

// HandleCreate handles POST /v1/invitations. The response is the only place
// the signed token ever appears.
func (h *InvitationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	inv, token, err := h.InvitationService.CreateInvitation(r.Context(), userID, req.Type, req.ListID, req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, toInvitationResponse(inv, token))
}

// HandleList handles GET /v1/invitations, returning the caller's pending
// invitations (without tokens).
func (h *InvitationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	invs, err := h.InvitationService.ListPending(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]InvitationResponse, 0, len(invs))
	for _, inv := range invs {
		out = append(out, toInvitationResponse(inv, ""))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type redeemInvitationRequest struct {
	Token string `json:"token"`
}

// HandleAccept handles POST /v1/invitations/accept.
func (h *InvitationsHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req redeemInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	inv, err := h.InvitationService.AcceptInvitation(r.Context(), userID, req.Token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toInvitationResponse(inv, ""))
}

// HandleDecline handles POST /v1/invitations/decline.
func (h *InvitationsHandler) HandleDecline(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req redeemInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.InvitationService.DeclineInvitation(r.Context(), userID, req.Token); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCancel handles DELETE /v1/invitations/{id}.
func (h *InvitationsHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.InvitationService.CancelInvitation(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
