package sqlite

import (
	"context"
	"time"

	"github.com/shist-app/shist/internal/shist/domain"
	"github.com/shist-app/shist/internal/shist/store"
)

type listsRepo struct {
	q querier
}

const listColumns = `id, name, creator_id, public, created_at, updated_at`

func scanList(row *row) (domain.List, error) {
	var l domain.List
	err := row.Scan(&l.ID, &l.Name, &l.CreatorID, &l.Public, &l.CreatedAt, &l.UpdatedAt)
	return l, mapNotFound(err)
}

func (r *listsRepo) GetListByID(ctx context.Context, id string) (domain.List, error) {
	return scanList(queryRow(ctx, r.q, `SELECT `+listColumns+` FROM lists WHERE id = ?`, id))
}

func (r *listsRepo) ListsForUser(ctx context.Context, userID string) ([]domain.List, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+listColumns+` FROM lists
		WHERE creator_id = ?
		   OR id IN (SELECT list_id FROM list_memberships WHERE user_id = ?)
		ORDER BY created_at DESC`,
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []domain.List
	for rows.Next() {
		l, err := scanList(fromRows(rows))
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (r *listsRepo) CreateList(ctx context.Context, l domain.List) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO lists (id, name, creator_id, public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, l.CreatorID, l.Public, orNow(l.CreatedAt), orNow(l.UpdatedAt))
	return mapConstraint(err)
}

func (r *listsRepo) UpdateList(ctx context.Context, listID, name string, public bool) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE lists SET name = ?, public = ?, updated_at = ? WHERE id = ?`,
		name, public, time.Now().UTC(), listID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *listsRepo) DeleteList(ctx context.Context, listID string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, listID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// requireAffected turns a zero-row write into ErrNotFound so services never
// report success against a missing record.
func requireAffected(res resultRows) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

type resultRows interface {
	RowsAffected() (int64, error)
}
