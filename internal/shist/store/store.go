package store

import (
	"context"
	"errors"

	"github.com/shist-app/shist/internal/shist/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. It exposes sub-repositories to keep
// concerns tidy and testable.
type Store interface {
	Users() Users
	Lists() Lists
	Items() Items
	Memberships() Memberships
	Invitations() Invitations
	Connections() Connections

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error
}

type Lists interface {
	// GetListByID fetches a list; every permission check starts here.
	GetListByID(ctx context.Context, id string) (domain.List, error)

	// ListsForUser returns lists the user created or is a member of,
	// newest first.
	ListsForUser(ctx context.Context, userID string) ([]domain.List, error)

	// CreateList inserts a new list (id is ULID).
	CreateList(ctx context.Context, l domain.List) error

	// UpdateList mutates name and public flag, bumps updated_at. The
	// creator is immutable.
	UpdateList(ctx context.Context, listID, name string, public bool) error

	// DeleteList cascades to items and memberships (per schema).
	DeleteList(ctx context.Context, listID string) error
}

type Items interface {
	// GetItemByID returns an item by id.
	GetItemByID(ctx context.Context, id string) (domain.Item, error)

	// ItemsForList returns a list's items in insertion order.
	ItemsForList(ctx context.Context, listID string) ([]domain.Item, error)

	// CreateItem inserts a new item.
	CreateItem(ctx context.Context, it domain.Item) error

	// UpdateItem mutates name, category and done, bumps updated_at.
	UpdateItem(ctx context.Context, itemID, name, category string, done bool) error

	// DeleteItem removes an item.
	DeleteItem(ctx context.Context, itemID string) error
}

type Memberships interface {
	// GetMembership returns the membership row for (list, user).
	GetMembership(ctx context.Context, listID, userID string) (domain.Membership, error)

	// MembershipsForList returns every non-creator membership of a list.
	MembershipsForList(ctx context.Context, listID string) ([]domain.Membership, error)

	// CountForList returns the number of membership rows for a list
	// (used for visibility classification).
	CountForList(ctx context.Context, listID string) (int, error)

	// CreateMembership inserts a membership row. Fails with
	// ErrAlreadyExists when the (list, user) pair already has one.
	CreateMembership(ctx context.Context, m domain.Membership) error

	// UpdateMembershipGrants replaces the three grant flags.
	UpdateMembershipGrants(ctx context.Context, listID, userID string, canAdd, canEdit, canDelete bool) error

	// DeleteMembership removes a user from a list.
	DeleteMembership(ctx context.Context, listID, userID string) error
}

type Invitations interface {
	// CreateInvitation writes a new pending invitation.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetInvitationByJTI returns the invitation matching a token's jti.
	GetInvitationByJTI(ctx context.Context, jti string) (domain.Invitation, error)

	// GetInvitationByID returns an invitation by id.
	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)

	// ListPendingByInviter returns an inviter's pending invitations,
	// newest first.
	ListPendingByInviter(ctx context.Context, inviterID string) ([]domain.Invitation, error)

	// SetInvitationStatus transitions status and records who acted
	// (transaction-friendly).
	SetInvitationStatus(ctx context.Context, id, status, actedBy string) error

	// DeleteExpiredInvitations is housekeeping for pending invitations
	// past their expiry.
	DeleteExpiredInvitations(ctx context.Context) error
}

type Connections interface {
	// GetConnection returns the connection between two users, if any.
	// Pair order does not matter.
	GetConnection(ctx context.Context, userA, userB string) (domain.Connection, error)

	// GetConnectionByID returns a connection by id.
	GetConnectionByID(ctx context.Context, id string) (domain.Connection, error)

	// ConnectionsForUser returns every connection involving the user.
	ConnectionsForUser(ctx context.Context, userID string) ([]domain.Connection, error)

	// CreateConnection inserts a connection. Fails with ErrAlreadyExists
	// when the pair is already connected.
	CreateConnection(ctx context.Context, c domain.Connection) error

	// DeleteConnection removes a connection.
	DeleteConnection(ctx context.Context, id string) error
}
