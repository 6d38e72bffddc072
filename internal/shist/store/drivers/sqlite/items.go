package sqlite

import (
	"context"
	"time"

	"github.com/shist-app/shist/internal/shist/domain"
)

type itemsRepo struct {
	q querier
}

const itemColumns = `id, list_id, name, category, done, created_by, created_at, updated_at`

func scanItem(row *row) (domain.Item, error) {
	var it domain.Item
	err := row.Scan(&it.ID, &it.ListID, &it.Name, &it.Category, &it.Done, &it.CreatedBy, &it.CreatedAt, &it.UpdatedAt)
	return it, mapNotFound(err)
}

func (r *itemsRepo) GetItemByID(ctx context.Context, id string) (domain.Item, error) {
	return scanItem(queryRow(ctx, r.q, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
}

func (r *itemsRepo) ItemsForList(ctx context.Context, listID string) ([]domain.Item, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE list_id = ? ORDER BY created_at ASC, id ASC`,
		listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(fromRows(rows))
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *itemsRepo) CreateItem(ctx context.Context, it domain.Item) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO items (id, list_id, name, category, done, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.ListID, it.Name, it.Category, it.Done, it.CreatedBy, orNow(it.CreatedAt), orNow(it.UpdatedAt))
	return mapConstraint(err)
}

func (r *itemsRepo) UpdateItem(ctx context.Context, itemID, name, category string, done bool) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE items SET name = ?, category = ?, done = ?, updated_at = ? WHERE id = ?`,
		name, category, done, time.Now().UTC(), itemID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *itemsRepo) DeleteItem(ctx context.Context, itemID string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, itemID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
