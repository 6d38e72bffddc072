package sqlite

import (
	"context"

	"github.com/shist-app/shist/internal/shist/domain"
)

type connectionsRepo struct {
	q querier
}

const connectionColumns = `id, user_a_id, user_b_id, created_at`

func scanConnection(row *row) (domain.Connection, error) {
	var c domain.Connection
	err := row.Scan(&c.ID, &c.UserAID, &c.UserBID, &c.CreatedAt)
	return c, mapNotFound(err)
}

// orderPair normalizes a user pair so (a, b) and (b, a) map to the same row.
func orderPair(userA, userB string) (string, string) {
	if userB < userA {
		return userB, userA
	}
	return userA, userB
}

func (r *connectionsRepo) GetConnection(ctx context.Context, userA, userB string) (domain.Connection, error) {
	a, b := orderPair(userA, userB)
	return scanConnection(queryRow(ctx, r.q, `
		SELECT `+connectionColumns+` FROM connections WHERE user_a_id = ? AND user_b_id = ?`,
		a, b))
}

func (r *connectionsRepo) GetConnectionByID(ctx context.Context, id string) (domain.Connection, error) {
	return scanConnection(queryRow(ctx, r.q, `
		SELECT `+connectionColumns+` FROM connections WHERE id = ?`, id))
}

func (r *connectionsRepo) ConnectionsForUser(ctx context.Context, userID string) ([]domain.Connection, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+connectionColumns+` FROM connections
		WHERE user_a_id = ? OR user_b_id = ?
		ORDER BY created_at DESC`,
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []domain.Connection
	for rows.Next() {
		c, err := scanConnection(fromRows(rows))
		if err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

func (r *connectionsRepo) CreateConnection(ctx context.Context, c domain.Connection) error {
	a, b := orderPair(c.UserAID, c.UserBID)
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO connections (id, user_a_id, user_b_id, created_at)
		VALUES (?, ?, ?, ?)`,
		c.ID, a, b, orNow(c.CreatedAt))
	return mapConstraint(err)
}

func (r *connectionsRepo) DeleteConnection(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM connections WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
