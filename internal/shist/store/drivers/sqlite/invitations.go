package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/shist-app/shist/internal/shist/domain"
)

type invitationsRepo struct {
	q querier
}

const invitationColumns = `id, jti, type, inviter_id, list_id, role, status, accepted_by, expires_at, created_at, updated_at`

func scanInvitation(row *row) (domain.Invitation, error) {
	var (
		inv        domain.Invitation
		listID     sql.NullString
		acceptedBy sql.NullString
	)
	err := row.Scan(&inv.ID, &inv.JTI, &inv.Type, &inv.InviterID, &listID, &inv.Role,
		&inv.Status, &acceptedBy, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt)
	inv.ListID = mapNullString(listID)
	inv.AcceptedBy = mapNullString(acceptedBy)
	return inv, mapNotFound(err)
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO invitations (id, jti, type, inviter_id, list_id, role, status, accepted_by, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.JTI, inv.Type, inv.InviterID, mapStringNull(inv.ListID), inv.Role,
		inv.Status, mapStringNull(inv.AcceptedBy), inv.ExpiresAt, orNow(inv.CreatedAt), orNow(inv.UpdatedAt))
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitationByJTI(ctx context.Context, jti string) (domain.Invitation, error) {
	return scanInvitation(queryRow(ctx, r.q, `
		SELECT `+invitationColumns+` FROM invitations WHERE jti = ?`, jti))
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	return scanInvitation(queryRow(ctx, r.q, `
		SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id))
}

func (r *invitationsRepo) ListPendingByInviter(ctx context.Context, inviterID string) ([]domain.Invitation, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+invitationColumns+` FROM invitations
		WHERE inviter_id = ? AND status = ?
		ORDER BY created_at DESC`,
		inviterID, domain.InvitationStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(fromRows(rows))
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (r *invitationsRepo) SetInvitationStatus(ctx context.Context, id, status, actedBy string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE invitations SET status = ?, accepted_by = ?, updated_at = ? WHERE id = ?`,
		status, mapStringNull(actedBy), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM invitations WHERE status = ? AND expires_at < ?`,
		domain.InvitationStatusPending, time.Now().UTC())
	return err
}
