package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shist-app/shist/internal/shist/domain"
	"github.com/shist-app/shist/internal/shist/store"
	"github.com/shist-app/shist/pkg/idemx"
	"github.com/shist-app/shist/pkg/idx"
	"github.com/shist-app/shist/pkg/invitex"
	"github.com/shist-app/shist/pkg/slogx"
)

var (
	ErrInvalidInvitation     = errors.New("invalid invitation request")
	ErrInvalidInvitationRole = errors.New("invalid invitation role")
	ErrInvitationNotFound    = errors.New("invitation not found or expired")
	ErrInvitationNotPending  = errors.New("invitation is no longer pending")
	ErrSelfInvitation        = errors.New("cannot accept your own invitation")
	ErrAlreadyMember         = errors.New("user is already a member of this list")
	ErrAlreadyConnected      = errors.New("users are already connected")
)

// DefaultInvitationTTL is how long an invitation link stays redeemable.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// InvitationService mints signed invitation tokens and redeems them. The
// token proves origin and freshness; the persisted invitation record holds
// the current business state and is checked at accept time.
type InvitationService struct {
	Store  store.Store
	Access *AccessService
	Codec  *invitex.Codec
	Idem   *idemx.Store
	TTL    time.Duration
}

func (s *InvitationService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultInvitationTTL
	}
	return s.TTL
}

// CreateInvitation persists a pending invitation and returns it with its
// signed token. List invitations require edit_list on the target list;
// connection invitations only need a valid session.
func (s *InvitationService) CreateInvitation(ctx context.Context, inviterID, invType, listID, role string) (domain.Invitation, string, error) {
	log := slogx.FromContext(ctx)

	switch invType {
	case domain.InvitationTypeConnection:
		if listID != "" || role != "" {
			return domain.Invitation{}, "", ErrInvalidInvitation
		}
	case domain.InvitationTypeList:
		if listID == "" {
			return domain.Invitation{}, "", ErrInvalidInvitation
		}
		if role != string(domain.RoleEditor) && role != string(domain.RoleViewer) {
			return domain.Invitation{}, "", ErrInvalidInvitationRole
		}
		if err := s.Access.RequirePermission(ctx, inviterID, listID, domain.PermEditList); err != nil {
			return domain.Invitation{}, "", err
		}
	default:
		return domain.Invitation{}, "", ErrInvalidInvitation
	}

	now := time.Now().UTC()
	inv := domain.Invitation{
		ID:        idx.New().String(),
		JTI:       idx.New().String(),
		Type:      invType,
		InviterID: inviterID,
		ListID:    listID,
		Role:      role,
		Status:    domain.InvitationStatusPending,
		ExpiresAt: now.Add(s.ttl()),
	}

	if err := s.Store.Invitations().CreateInvitation(ctx, inv); err != nil {
		log.Error("failed to create invitation", slog.Any("error", err))
		return domain.Invitation{}, "", err
	}

	token, err := s.Codec.Sign(invitex.Payload{
		JTI:       inv.JTI,
		InviterID: inviterID,
		ListID:    listID,
		Type:      invType,
		Role:      role,
		IssuedAt:  now.Unix(),
		ExpiresAt: inv.ExpiresAt.Unix(),
	})
	if err != nil {
		log.Error("failed to sign invitation token", slog.Any("error", err))
		return domain.Invitation{}, "", err
	}

	log.Info("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("type", invType),
	)
	return inv, token, nil
}

// AcceptInvitation redeems a token for the accepting user. In one
// transaction it creates the membership or connection and marks the
// invitation accepted. The jti idempotency guard makes replays of an
// already-processed token fail fast without touching the database.
func (s *InvitationService) AcceptInvitation(ctx context.Context, userID, token string) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	payload, err := s.Codec.Verify(token)
	if err != nil {
		log.Warn("invitation token rejected", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	if s.Idem.Has(idemKey(payload.JTI)) {
		return domain.Invitation{}, ErrInvitationNotPending
	}

	inv, err := s.loadPending(ctx, payload.JTI)
	if err != nil {
		return domain.Invitation{}, err
	}
	if inv.InviterID == userID {
		return domain.Invitation{}, ErrSelfInvitation
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		switch inv.Type {
		case domain.InvitationTypeList:
			grants := membershipGrants(inv.Role)
			m := domain.Membership{
				ListID:    inv.ListID,
				UserID:    userID,
				CanAdd:    grants.canAdd,
				CanEdit:   grants.canEdit,
				CanDelete: grants.canDelete,
			}
			if err := tx.Memberships().CreateMembership(ctx, m); err != nil {
				if errors.Is(err, store.ErrAlreadyExists) {
					return ErrAlreadyMember
				}
				return err
			}
		case domain.InvitationTypeConnection:
			c := domain.Connection{
				ID:      idx.New().String(),
				UserAID: inv.InviterID,
				UserBID: userID,
			}
			if err := tx.Connections().CreateConnection(ctx, c); err != nil {
				if errors.Is(err, store.ErrAlreadyExists) {
					return ErrAlreadyConnected
				}
				return err
			}
		default:
			return ErrInvalidInvitation
		}

		return tx.Invitations().SetInvitationStatus(ctx, inv.ID, domain.InvitationStatusAccepted, userID)
	})
	if err != nil {
		return domain.Invitation{}, err
	}

	s.Idem.Add(idemKey(payload.JTI))

	log.Info("invitation accepted",
		slog.String("invitation_id", inv.ID),
		slog.String("accepted_by", userID),
	)

	inv.Status = domain.InvitationStatusAccepted
	inv.AcceptedBy = userID
	return inv, nil
}

// DeclineInvitation marks a pending invitation declined. The token alone
// authorizes the decline, same as accept; the inviter withdraws through
// CancelInvitation instead.
func (s *InvitationService) DeclineInvitation(ctx context.Context, userID, token string) error {
	payload, err := s.Codec.Verify(token)
	if err != nil {
		return err
	}

	if s.Idem.Has(idemKey(payload.JTI)) {
		return ErrInvitationNotPending
	}

	inv, err := s.loadPending(ctx, payload.JTI)
	if err != nil {
		return err
	}
	if inv.InviterID == userID {
		return ErrSelfInvitation
	}

	if err := s.Store.Invitations().SetInvitationStatus(ctx, inv.ID, domain.InvitationStatusDeclined, userID); err != nil {
		return mapStoreErr(err)
	}

	s.Idem.Add(idemKey(payload.JTI))
	return nil
}

// CancelInvitation lets the inviter withdraw a pending invitation.
func (s *InvitationService) CancelInvitation(ctx context.Context, inviterID, invitationID string) error {
	inv, err := s.Store.Invitations().GetInvitationByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvitationNotFound
		}
		return err
	}
	if inv.InviterID != inviterID {
		return ErrForbidden
	}
	if inv.Status != domain.InvitationStatusPending {
		return ErrInvitationNotPending
	}

	if err := s.Store.Invitations().SetInvitationStatus(ctx, inv.ID, domain.InvitationStatusCanceled, inviterID); err != nil {
		return mapStoreErr(err)
	}

	s.Idem.Add(idemKey(inv.JTI))
	return nil
}

// ListPending returns the caller's outstanding invitations.
func (s *InvitationService) ListPending(ctx context.Context, inviterID string) ([]domain.Invitation, error) {
	return s.Store.Invitations().ListPendingByInviter(ctx, inviterID)
}

// loadPending fetches the invitation record behind a verified token and
// checks it is still redeemable.
func (s *InvitationService) loadPending(ctx context.Context, jti string) (domain.Invitation, error) {
	inv, err := s.Store.Invitations().GetInvitationByJTI(ctx, jti)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvitationNotFound
		}
		return domain.Invitation{}, err
	}

	if inv.Status != domain.InvitationStatusPending {
		return domain.Invitation{}, ErrInvitationNotPending
	}
	if time.Now().UTC().After(inv.ExpiresAt) {
		return domain.Invitation{}, ErrInvitationNotFound
	}
	return inv, nil
}

type grants struct {
	canAdd, canEdit, canDelete bool
}

// membershipGrants maps an invited role onto membership flags matching the
// role hierarchy: viewers may add items, editors may add, edit and delete.
func membershipGrants(role string) grants {
	switch role {
	case string(domain.RoleEditor):
		return grants{canAdd: true, canEdit: true, canDelete: true}
	default: // viewer
		return grants{canAdd: true}
	}
}

func idemKey(jti string) string {
	return "invitation:" + jti
}
