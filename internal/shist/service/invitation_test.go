package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shist-app/shist/internal/shist/domain"
	"github.com/shist-app/shist/internal/shist/service"
	"github.com/shist-app/shist/internal/shist/store"
	"github.com/shist-app/shist/pkg/idemx"
	"github.com/shist-app/shist/pkg/idx"
	"github.com/shist-app/shist/pkg/invitex"

	"github.com/stretchr/testify/require"
)

func newInvitationService(t *testing.T) (*service.InvitationService, store.Store) {
	t.Helper()

	s := newTestStore(t)
	return &service.InvitationService{
		Store:  s,
		Access: &service.AccessService{Store: s},
		Codec:  invitex.NewCodec([]byte("test-secret")),
		Idem:   idemx.New(time.Hour),
	}, s
}

func TestListInvitationAcceptLifecycle(t *testing.T) {
	t.Parallel()

	svc, s := newInvitationService(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	list := seedList(t, s, alice.ID, false)

	inv, token, err := svc.CreateInvitation(ctx, alice.ID, domain.InvitationTypeList, list.ID, string(domain.RoleEditor))
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, domain.InvitationStatusPending, inv.Status)

	accepted, err := svc.AcceptInvitation(ctx, bob.ID, token)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationStatusAccepted, accepted.Status)
	require.Equal(t, bob.ID, accepted.AcceptedBy)

	// editor role grants the full flag set
	m, err := s.Memberships().GetMembership(ctx, list.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, m.CanAdd)
	require.True(t, m.CanEdit)
	require.True(t, m.CanDelete)

	// replay is rejected without touching the membership again
	_, err = svc.AcceptInvitation(ctx, bob.ID, token)
	require.ErrorIs(t, err, service.ErrInvitationNotPending)
}

func TestViewerInvitationGrantsAddOnly(t *testing.T) {
	t.Parallel()

	svc, s := newInvitationService(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	list := seedList(t, s, alice.ID, false)

	_, token, err := svc.CreateInvitation(ctx, alice.ID, domain.InvitationTypeList, list.ID, string(domain.RoleViewer))
	require.NoError(t, err)

	_, err = svc.AcceptInvitation(ctx, bob.ID, token)
	require.NoError(t, err)

	m, err := s.Memberships().GetMembership(ctx, list.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, m.CanAdd)
	require.False(t, m.CanEdit)
	require.False(t, m.CanDelete)
}

func TestConnectionInvitationAccept(t *testing.T) {
	t.Parallel()

	svc, s := newInvitationService(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	_, token, err := svc.CreateInvitation(ctx, alice.ID, domain.InvitationTypeConnection, "", "")
	require.NoError(t, err)

	_, err = svc.AcceptInvitation(ctx, bob.ID, token)
	require.NoError(t, err)

	conn, err := s.Connections().GetConnection(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NotEmpty(t, conn.ID)

	// a second invitation between the same pair cannot be accepted
	_, token2, err := svc.CreateInvitation(ctx, alice.ID, domain.InvitationTypeConnection, "", "")
	require.NoError(t, err)
	_, err = svc.AcceptInvitation(ctx, bob.ID, token2)
	require.ErrorIs(t, err, service.ErrAlreadyConnected)
}

func TestInviterCannotAcceptOwnInvitation(t *testing.T) {
	t.Parallel()

	svc, s := newInvitationService(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")

	_, token, err := svc.CreateInvitation(ctx, alice.ID, domain.InvitationTypeConnection, "", "")
	require.NoError(t, err)

	_, err = svc.AcceptInvitation(ctx, alice.ID, token)
	require.ErrorIs(t, err, service.ErrSelfInvitation)

	// same for decline; the inviter path is CancelInvitation
	require.ErrorIs(t, svc.DeclineInvitation(ctx, alice.ID, token), service.ErrSelfInvitation)

	// the invitation stays pending for the actual recipient
	bob := seedUser(t, s, "bob")
	_, err = svc.AcceptInvitation(ctx, bob.ID, token)
	require.NoError(t, err)
}

func TestCreateListInvitationRequiresEditList(t *testing.T) {
	t.Parallel()

	svc, s := newInvitationService(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	viewer := seedUser(t, s, "viewer")
	list := seedList(t, s, alice.ID, false)
	seedMembership(t, s, list.ID, viewer.ID, true, false, false)

	_, _, err := svc.CreateInvitation(ctx, viewer.ID, domain.InvitationTypeList, list.ID, string(domain.RoleViewer))
	require.ErrorIs(t, err, service.ErrForbidden)
}

func TestCreateInvitationValidation(t *testing.T) {
	t.Parallel()

	svc, s := newInvitationService(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	list := seedList(t, s, alice.ID, false)

	_, _, err := svc.CreateInvitation(ctx, alice.ID, domain.InvitationTypeList, list.ID, "owner")
	require.ErrorIs(t, err, service.ErrInvalidInvitationRole)

	_, _, err = svc.CreateInvitation(ctx, alice.ID, domain.InvitationTypeList, "", string(domain.RoleViewer))
	require.ErrorIs(t, err, service.ErrInvalidInvitation)

	_, _, err = svc.CreateInvitation(ctx, alice.ID, domain.InvitationTypeConnection, list.ID, "")
	require.ErrorIs(t, err, service.ErrInvalidInvitation)

	_, _, err = svc.CreateInvitation(ctx, alice.ID, "bogus", "", "")
	require.ErrorIs(t, err, service.ErrInvalidInvitation)
}

func TestDeclineInvitation(t *testing.T) {
	t.Parallel()

	svc, s := newInvitationService(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	inv, token, err := svc.CreateInvitation(ctx, alice.ID, domain.InvitationTypeConnection, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeclineInvitation(ctx, bob.ID, token))

	got, err := s.Invitations().GetInvitationByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationStatusDeclined, got.Status)

	// declined tokens cannot be accepted afterwards
	_, err = svc.AcceptInvitation(ctx, bob.ID, token)
	require.ErrorIs(t, err, service.ErrInvitationNotPending)

	// and no connection was created
	_, err = s.Connections().GetConnection(ctx, alice.ID, bob.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCancelInvitation(t *testing.T) {
	t.Parallel()

	svc, s := newInvitationService(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	inv, token, err := svc.CreateInvitation(ctx, alice.ID, domain.InvitationTypeConnection, "", "")
	require.NoError(t, err)

	// only the inviter may cancel
	require.ErrorIs(t, svc.CancelInvitation(ctx, bob.ID, inv.ID), service.ErrForbidden)
	require.NoError(t, svc.CancelInvitation(ctx, alice.ID, inv.ID))

	_, err = svc.AcceptInvitation(ctx, bob.ID, token)
	require.ErrorIs(t, err, service.ErrInvitationNotPending)

	require.ErrorIs(t, svc.CancelInvitation(ctx, alice.ID, idx.New().String()), service.ErrInvitationNotFound)
}

func TestAcceptRejectsBadTokens(t *testing.T) {
	t.Parallel()

	svc, s := newInvitationService(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	_, token, err := svc.CreateInvitation(ctx, alice.ID, domain.InvitationTypeConnection, "", "")
	require.NoError(t, err)

	// flip a payload byte
	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}
	_, err = svc.AcceptInvitation(ctx, bob.ID, string(tampered))
	require.Error(t, err)

	_, err = svc.AcceptInvitation(ctx, bob.ID, "not-a-token")
	require.ErrorIs(t, err, invitex.ErrInvalidToken)
}

func TestAcceptExpiredRecordFails(t *testing.T) {
	t.Parallel()

	svc, s := newInvitationService(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	// record already past expiry even though the token still verifies
	now := time.Now().UTC()
	inv := domain.Invitation{
		ID:        idx.New().String(),
		JTI:       idx.New().String(),
		Type:      domain.InvitationTypeConnection,
		InviterID: alice.ID,
		Status:    domain.InvitationStatusPending,
		ExpiresAt: now.Add(-time.Minute),
	}
	require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))

	token, err := svc.Codec.Sign(invitex.Payload{
		JTI:       inv.JTI,
		InviterID: alice.ID,
		Type:      invitex.TypeConnection,
		IssuedAt:  now.Add(-time.Hour).Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	_, err = svc.AcceptInvitation(ctx, bob.ID, token)
	require.ErrorIs(t, err, service.ErrInvitationNotFound)
}

func TestExpiredTokenFailsVerification(t *testing.T) {
	t.Parallel()

	svc, s := newInvitationService(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	now := time.Now().UTC()
	token, err := svc.Codec.Sign(invitex.Payload{
		JTI:       idx.New().String(),
		InviterID: alice.ID,
		Type:      invitex.TypeConnection,
		IssuedAt:  now.Add(-2 * time.Hour).Unix(),
		ExpiresAt: now.Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)

	_, err = svc.AcceptInvitation(ctx, bob.ID, token)
	require.ErrorIs(t, err, invitex.ErrTokenExpired)
}
