package sqlite

import (
	"context"

	"github.com/shist-app/shist/internal/shist/domain"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, username, display_name, password_hash, created_at, updated_at`

func scanUser(row *row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, mapNotFound(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(queryRow(ctx, r.q, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(queryRow(ctx, r.q, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := orNow(u.CreatedAt)
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, username, display_name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.DisplayName, u.PasswordHash, now, orNow(u.UpdatedAt))
	return mapConstraint(err)
}
