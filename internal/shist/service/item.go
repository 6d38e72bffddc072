package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shist-app/shist/internal/shist/domain"
	"github.com/shist-app/shist/internal/shist/store"
	"github.com/shist-app/shist/internal/shist/ws"
	"github.com/shist-app/shist/pkg/idx"
	"github.com/shist-app/shist/pkg/slogx"
)

var ErrInvalidItemName = errors.New("invalid item name")

// ItemService implements item mutations gated on per-item permissions.
// Successful mutations publish a change event to the hub after the write
// commits, so subscribers never observe an event for a rolled-back change.
type ItemService struct {
	Store  store.Store
	Access *AccessService
	Hub    *ws.Hub
}

// ItemsForList returns a list's items, gated on view_list.
func (s *ItemService) ItemsForList(ctx context.Context, userID, listID string) ([]domain.Item, error) {
	if err := s.Access.RequirePermission(ctx, userID, listID, domain.PermViewList); err != nil {
		return nil, err
	}
	return s.Store.Items().ItemsForList(ctx, listID)
}

// AddItem appends an item, gated on add_item.
func (s *ItemService) AddItem(ctx context.Context, userID, listID, name, category string) (domain.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Item{}, ErrInvalidItemName
	}
	if err := s.Access.RequirePermission(ctx, userID, listID, domain.PermAddItem); err != nil {
		return domain.Item{}, err
	}

	item := domain.Item{
		ID:        idx.New().String(),
		ListID:    listID,
		Name:      name,
		Category:  strings.TrimSpace(category),
		CreatedBy: userID,
	}
	if err := s.Store.Items().CreateItem(ctx, item); err != nil {
		slogx.FromContext(ctx).Error("failed to create item", slog.Any("error", err))
		return domain.Item{}, err
	}

	created, err := s.Store.Items().GetItemByID(ctx, item.ID)
	if err != nil {
		return domain.Item{}, mapStoreErr(err)
	}

	s.Hub.Broadcast(ws.ItemAdded(created))
	return created, nil
}

// UpdateItem mutates name, category and done, gated on update_item against
// the item's list.
func (s *ItemService) UpdateItem(ctx context.Context, userID, itemID, name, category string, done bool) (domain.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Item{}, ErrInvalidItemName
	}

	item, err := s.Store.Items().GetItemByID(ctx, itemID)
	if err != nil {
		return domain.Item{}, mapStoreErr(err)
	}
	if err := s.Access.RequirePermission(ctx, userID, item.ListID, domain.PermUpdateItem); err != nil {
		return domain.Item{}, err
	}

	if err := s.Store.Items().UpdateItem(ctx, itemID, name, strings.TrimSpace(category), done); err != nil {
		return domain.Item{}, mapStoreErr(err)
	}
	updated, err := s.Store.Items().GetItemByID(ctx, itemID)
	if err != nil {
		return domain.Item{}, mapStoreErr(err)
	}

	s.Hub.Broadcast(ws.ItemUpdated(updated))
	return updated, nil
}

// DeleteItem removes an item, gated on delete_item against the item's list.
func (s *ItemService) DeleteItem(ctx context.Context, userID, itemID string) error {
	item, err := s.Store.Items().GetItemByID(ctx, itemID)
	if err != nil {
		return mapStoreErr(err)
	}
	if err := s.Access.RequirePermission(ctx, userID, item.ListID, domain.PermDeleteItem); err != nil {
		return err
	}

	if err := s.Store.Items().DeleteItem(ctx, itemID); err != nil {
		return mapStoreErr(err)
	}

	s.Hub.Broadcast(ws.ItemDeleted(item.ListID, item.ID))
	return nil
}
