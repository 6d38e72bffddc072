package sqlite

import (
	"context"
	"time"

	"github.com/shist-app/shist/internal/shist/domain"
)

type membershipsRepo struct {
	q querier
}

const membershipColumns = `list_id, user_id, can_add, can_edit, can_delete, created_at, updated_at`

func scanMembership(row *row) (domain.Membership, error) {
	var m domain.Membership
	err := row.Scan(&m.ListID, &m.UserID, &m.CanAdd, &m.CanEdit, &m.CanDelete, &m.CreatedAt, &m.UpdatedAt)
	return m, mapNotFound(err)
}

func (r *membershipsRepo) GetMembership(ctx context.Context, listID, userID string) (domain.Membership, error) {
	return scanMembership(queryRow(ctx, r.q, `
		SELECT `+membershipColumns+` FROM list_memberships WHERE list_id = ? AND user_id = ?`,
		listID, userID))
}

func (r *membershipsRepo) MembershipsForList(ctx context.Context, listID string) ([]domain.Membership, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+membershipColumns+` FROM list_memberships WHERE list_id = ? ORDER BY created_at ASC`,
		listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Membership
	for rows.Next() {
		m, err := scanMembership(fromRows(rows))
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *membershipsRepo) CountForList(ctx context.Context, listID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM list_memberships WHERE list_id = ?`, listID).Scan(&n)
	return n, err
}

func (r *membershipsRepo) CreateMembership(ctx context.Context, m domain.Membership) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO list_memberships (list_id, user_id, can_add, can_edit, can_delete, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ListID, m.UserID, m.CanAdd, m.CanEdit, m.CanDelete, orNow(m.CreatedAt), orNow(m.UpdatedAt))
	return mapConstraint(err)
}

func (r *membershipsRepo) UpdateMembershipGrants(ctx context.Context, listID, userID string, canAdd, canEdit, canDelete bool) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE list_memberships SET can_add = ?, can_edit = ?, can_delete = ?, updated_at = ?
		WHERE list_id = ? AND user_id = ?`,
		canAdd, canEdit, canDelete, time.Now().UTC(), listID, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *membershipsRepo) DeleteMembership(ctx context.Context, listID, userID string) error {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM list_memberships WHERE list_id = ? AND user_id = ?`, listID, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
