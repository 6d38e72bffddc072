package domain

import "time"

// Invitation kinds.
const (
	InvitationTypeConnection = "connection"
	InvitationTypeList       = "list"
)

// Invitation statuses. A token is only redeemable while the record is
// pending; the token itself proves origin and freshness, this record is the
// current business state.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusDeclined = "declined"
	InvitationStatusCanceled = "canceled"
)

type Invitation struct {
	ID         string
	JTI        string // token id embedded in the signed token
	Type       string // InvitationTypeConnection or InvitationTypeList
	InviterID  string
	ListID     string // empty for connection invitations
	Role       string // target role for list invitations (editor or viewer)
	Status     string
	AcceptedBy string // empty until accepted or declined
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
