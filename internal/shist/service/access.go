package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shist-app/shist/internal/shist/domain"
	"github.com/shist-app/shist/internal/shist/store"
	"github.com/shist-app/shist/pkg/slogx"
)

var (
	// ErrNotFound reports a list (or other resource) that does not exist.
	// The message is the stable condition name clients match on.
	ErrNotFound = errors.New("NOT_FOUND")

	// ErrForbidden reports a denied permission check.
	ErrForbidden = errors.New("FORBIDDEN")
)

// AccessService evaluates roles and permissions against list membership
// state. It is stateless and re-reads the store on every check; permissions
// can change between calls and nothing here may be cached.
type AccessService struct {
	Store store.Store
}

// DeriveRole computes a user's role on a list. membership is nil when the
// user has no row. A row with every flag false grants no role at all, though
// its mere existence still matters for view_list.
func DeriveRole(list domain.List, userID string, membership *domain.Membership) domain.Role {
	switch {
	case list.CreatorID == userID:
		return domain.RoleOwner
	case membership != nil && (membership.CanEdit || membership.CanDelete):
		return domain.RoleEditor
	case membership != nil && membership.CanAdd:
		return domain.RoleViewer
	default:
		return domain.RoleNone
	}
}

// Granted reports whether a permission holds for the given list/membership
// snapshot. Pure function of its arguments.
func Granted(perm domain.Permission, list domain.List, userID string, membership *domain.Membership) bool {
	owner := list.CreatorID == userID

	var canAdd, canEdit, canDelete bool
	if membership != nil {
		canAdd, canEdit, canDelete = membership.CanAdd, membership.CanEdit, membership.CanDelete
	}

	switch perm {
	case domain.PermViewList:
		return list.Public || owner || membership != nil
	case domain.PermEditList, domain.PermDeleteList:
		// delete_list deliberately shares the edit_list threshold: editors
		// may delete the list itself.
		return owner || canEdit || canDelete
	case domain.PermAddItem:
		return owner || canAdd || canEdit || canDelete
	case domain.PermUpdateItem:
		return owner || canEdit || canDelete
	case domain.PermDeleteItem:
		return owner || canDelete
	default:
		return false
	}
}

// RequirePermission loads the list and the requester's membership row and
// fails with ErrNotFound when the list is absent or ErrForbidden when the
// permission is not granted. No side effects on failure.
func (s *AccessService) RequirePermission(ctx context.Context, userID, listID string, perm domain.Permission) error {
	list, membership, err := s.load(ctx, userID, listID)
	if err != nil {
		return err
	}

	if !Granted(perm, list, userID, membership) {
		slogx.FromContext(ctx).Debug("permission denied",
			slog.String("user_id", userID),
			slog.String("list_id", listID),
			slog.String("permission", string(perm)),
		)
		return ErrForbidden
	}
	return nil
}

// RoleFor computes the requester's role on a list.
func (s *AccessService) RoleFor(ctx context.Context, userID, listID string) (domain.Role, error) {
	list, membership, err := s.load(ctx, userID, listID)
	if err != nil {
		return domain.RoleNone, err
	}
	return DeriveRole(list, userID, membership), nil
}

// Visibility classifies a list as public, shared or private.
func (s *AccessService) Visibility(ctx context.Context, list domain.List) (domain.Visibility, error) {
	n, err := s.Store.Memberships().CountForList(ctx, list.ID)
	if err != nil {
		return "", err
	}
	return domain.ClassifyVisibility(list, n), nil
}

func (s *AccessService) load(ctx context.Context, userID, listID string) (domain.List, *domain.Membership, error) {
	list, err := s.Store.Lists().GetListByID(ctx, listID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.List{}, nil, ErrNotFound
		}
		return domain.List{}, nil, err
	}

	m, err := s.Store.Memberships().GetMembership(ctx, listID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return list, nil, nil
		}
		return domain.List{}, nil, err
	}
	return list, &m, nil
}
