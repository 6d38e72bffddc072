package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shist-app/shist/internal/shist/domain"
	"github.com/shist-app/shist/internal/shist/store"
	"github.com/shist-app/shist/pkg/idx"
	"github.com/shist-app/shist/pkg/slogx"
)

var ErrInvalidListName = errors.New("invalid list name")

// ListView is a list together with its derived visibility and the
// requester's role, the shape handlers serialize.
type ListView struct {
	List       domain.List
	Visibility domain.Visibility
	Role       domain.Role
}

// ListService implements list CRUD gated on the access evaluator. The
// creator is the owner without a membership row; deleting a list cascades to
// its items and memberships.
type ListService struct {
	Store  store.Store
	Access *AccessService
}

// CreateList makes the caller owner of a fresh list.
func (s *ListService) CreateList(ctx context.Context, userID, name string, public bool) (domain.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.List{}, ErrInvalidListName
	}

	list := domain.List{
		ID:        idx.New().String(),
		Name:      name,
		CreatorID: userID,
		Public:    public,
	}
	if err := s.Store.Lists().CreateList(ctx, list); err != nil {
		slogx.FromContext(ctx).Error("failed to create list", slog.Any("error", err))
		return domain.List{}, err
	}

	slogx.FromContext(ctx).Info("list created",
		slog.String("list_id", list.ID),
		slog.String("creator_id", userID),
	)
	return list, nil
}

// GetList returns one list, gated on view_list.
func (s *ListService) GetList(ctx context.Context, userID, listID string) (ListView, error) {
	if err := s.Access.RequirePermission(ctx, userID, listID, domain.PermViewList); err != nil {
		return ListView{}, err
	}
	list, err := s.Store.Lists().GetListByID(ctx, listID)
	if err != nil {
		return ListView{}, mapStoreErr(err)
	}
	return s.view(ctx, userID, list)
}

// ListsForUser returns every list the user created or belongs to.
func (s *ListService) ListsForUser(ctx context.Context, userID string) ([]ListView, error) {
	lists, err := s.Store.Lists().ListsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]ListView, 0, len(lists))
	for _, list := range lists {
		v, err := s.view(ctx, userID, list)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// UpdateList renames a list or flips its public flag, gated on edit_list.
// The creator never changes.
func (s *ListService) UpdateList(ctx context.Context, userID, listID, name string, public bool) (domain.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.List{}, ErrInvalidListName
	}
	if err := s.Access.RequirePermission(ctx, userID, listID, domain.PermEditList); err != nil {
		return domain.List{}, err
	}

	if err := s.Store.Lists().UpdateList(ctx, listID, name, public); err != nil {
		return domain.List{}, mapStoreErr(err)
	}
	list, err := s.Store.Lists().GetListByID(ctx, listID)
	if err != nil {
		return domain.List{}, mapStoreErr(err)
	}
	return list, nil
}

// DeleteList removes a list and everything hanging off it, gated on
// delete_list.
func (s *ListService) DeleteList(ctx context.Context, userID, listID string) error {
	if err := s.Access.RequirePermission(ctx, userID, listID, domain.PermDeleteList); err != nil {
		return err
	}
	if err := s.Store.Lists().DeleteList(ctx, listID); err != nil {
		return mapStoreErr(err)
	}

	slogx.FromContext(ctx).Info("list deleted",
		slog.String("list_id", listID),
		slog.String("deleted_by", userID),
	)
	return nil
}

func (s *ListService) view(ctx context.Context, userID string, list domain.List) (ListView, error) {
	vis, err := s.Access.Visibility(ctx, list)
	if err != nil {
		return ListView{}, err
	}
	role, err := s.Access.RoleFor(ctx, userID, list.ID)
	if err != nil {
		return ListView{}, err
	}
	return ListView{List: list, Visibility: vis, Role: role}, nil
}

// mapStoreErr lifts the store's not-found sentinel into the service one.
func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
