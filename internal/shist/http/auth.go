package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shist-app/shist/internal/shist/service"
	"github.com/shist-app/shist/pkg/httpx"
)

type RegisterHandler struct {
	UserService *service.UserService
}

type registerRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Username, req.DisplayName, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

type LoginHandler struct {
	UserService *service.UserService

	// Limiter throttles attempts per (ip, username) pair. It lives here
	// rather than in middleware because the username is inside the JSON
	// body.
	Limiter *httpx.Limiter
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	key := httpx.IPKeyExtractor(r) + "|" + req.Username
	if !h.Limiter.Allow(key) {
		retryAfter := h.Limiter.RetryAfter(key)
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		httpx.WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many login attempts")
		return
	}

	token, user, err := h.UserService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        toUserResponse(user),
	})
}
