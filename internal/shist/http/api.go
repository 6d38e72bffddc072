package http

import (
	"time"

	"github.com/shist-app/shist/internal/shist/domain"
	"github.com/shist-app/shist/internal/shist/service"
)

// Wire shapes for the JSON API. Kept separate from domain types so storage
// changes never leak into the contract clients parse.

type UserResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

type ListResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatorID  string    `json:"creator_id"`
	Public     bool      `json:"public"`
	Visibility string    `json:"visibility"`
	Role       string    `json:"role,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ItemResponse struct {
	ID        string    `json:"id"`
	ListID    string    `json:"list_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Done      bool      `json:"done"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InvitationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ListID    string    `json:"list_id,omitempty"`
	Role      string    `json:"role,omitempty"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`

	// Token is only present in the create response; it is never
	// retrievable afterwards.
	Token string `json:"token,omitempty"`
}

type ConnectionResponse struct {
	ID        string    `json:"id"`
	UserAID   string    `json:"user_a_id"`
	UserBID   string    `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName}
}

func toListResponse(v service.ListView) ListResponse {
	return ListResponse{
		ID:         v.List.ID,
		Name:       v.List.Name,
		CreatorID:  v.List.CreatorID,
		Public:     v.List.Public,
		Visibility: string(v.Visibility),
		Role:       string(v.Role),
		CreatedAt:  v.List.CreatedAt,
		UpdatedAt:  v.List.UpdatedAt,
	}
}

func toItemResponse(it domain.Item) ItemResponse {
	return ItemResponse{
		ID:        it.ID,
		ListID:    it.ListID,
		Name:      it.Name,
		Category:  it.Category,
		Done:      it.Done,
		CreatedBy: it.CreatedBy,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}

func toInvitationResponse(inv domain.Invitation, token string) InvitationResponse {
	return InvitationResponse{
		ID:        inv.ID,
		Type:      inv.Type,
		ListID:    inv.ListID,
		Role:      inv.Role,
		Status:    inv.Status,
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
		Token:     token,
	}
}

func toConnectionResponse(c domain.Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:        c.ID,
		UserAID:   c.UserAID,
		UserBID:   c.UserBID,
		CreatedAt: c.CreatedAt,
	}
}
