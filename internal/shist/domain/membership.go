package domain

import "time"

// Membership links a user to a list with three independent grants. At most
// one row exists per (list, user) pair; the creator needs no row at all.
type Membership struct {
	ListID    string
	UserID    string
	CanAdd    bool
	CanEdit   bool
	CanDelete bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role is a derived coarse-grained label summarizing a membership's
// effective power. Computed, never persisted.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"

	// RoleNone means the user has no relationship with the list.
	RoleNone Role = ""
)

// Permission names an action checked against a list.
type Permission string

const (
	PermViewList   Permission = "view_list"
	PermEditList   Permission = "edit_list"
	PermDeleteList Permission = "delete_list"
	PermAddItem    Permission = "add_item"
	PermUpdateItem Permission = "update_item"
	PermDeleteItem Permission = "delete_item"
)

// Permissions lists every checkable permission.
func Permissions() []Permission {
	return []Permission{
		PermViewList,
		PermEditList,
		PermDeleteList,
		PermAddItem,
		PermUpdateItem,
		PermDeleteItem,
	}
}
