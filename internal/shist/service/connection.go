package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shist-app/shist/internal/shist/domain"
	"github.com/shist-app/shist/internal/shist/store"
	"github.com/shist-app/shist/pkg/slogx"
)

var ErrConnectionNotFound = errors.New("connection not found")

// ConnectionService manages the user-to-user connection graph. Connections
// are created by accepting connection invitations; here they are only
// listed and severed.
type ConnectionService struct {
	Store store.Store
}

// ConnectionsForUser returns every connection involving the user.
func (s *ConnectionService) ConnectionsForUser(ctx context.Context, userID string) ([]domain.Connection, error) {
	return s.Store.Connections().ConnectionsForUser(ctx, userID)
}

// RemoveConnection severs a connection. Either side may do it; anyone else
// is forbidden.
func (s *ConnectionService) RemoveConnection(ctx context.Context, userID, connectionID string) error {
	conn, err := s.Store.Connections().GetConnectionByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrConnectionNotFound
		}
		return err
	}
	if conn.UserAID != userID && conn.UserBID != userID {
		return ErrForbidden
	}

	if err := s.Store.Connections().DeleteConnection(ctx, connectionID); err != nil {
		return mapStoreErr(err)
	}

	slogx.FromContext(ctx).Info("connection removed",
		slog.String("connection_id", connectionID),
		slog.String("removed_by", userID),
	)
	return nil
}
