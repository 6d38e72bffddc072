// Package invitex implements the signed invitation token used by Shist
// invitation links. A token is self-contained: verifying it proves who minted
// it and that it has not expired, without a database round-trip. Whether the
// underlying invitation is still pending is business state and stays with the
// caller.
package invitex

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Invitation kinds carried in the token payload.
const (
	TypeConnection = "connection"
	TypeList       = "list"
)

var (
	// ErrInvalidToken reports a structurally broken token (wrong segment
	// count, undecodable or schema-invalid payload).
	ErrInvalidToken = errors.New("invitex: invalid token")

	// ErrInvalidSignature reports a signature mismatch, i.e. tampering or a
	// token minted with a different secret.
	ErrInvalidSignature = errors.New("invitex: invalid signature")

	// ErrTokenExpired reports a token whose exp has elapsed.
	ErrTokenExpired = errors.New("invitex: token expired")
)

// Payload is the invitation intent asserted by a signed token.
type Payload struct {
	JTI       string `json:"jti"`
	InviterID string `json:"inviter_id"`
	ListID    string `json:"list_id,omitempty"` // present for list invitations
	Type      string `json:"invitation_type"`   // TypeConnection or TypeList
	Role      string `json:"role,omitempty"`    // target role for list invitations
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// header is the fixed algorithm identifier. Only HMAC-SHA256 is ever minted,
// so the header carries no negotiable content.
const header = `{"alg":"HS256"}`

var encodedHeader = base64.RawURLEncoding.EncodeToString([]byte(header))

// Codec signs and verifies invitation tokens with a server-held secret.
type Codec struct {
	secret []byte
}

// NewCodec builds a codec from the configured signing secret.
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Sign encodes the payload as base64url(header).base64url(payload).base64url(sig).
// The signature is HMAC-SHA256 over the first two segments joined by a dot.
// The resulting string uses only the base64url alphabet and dots, so it is
// safe in a URL path segment.
func (c *Codec) Sign(p Payload) (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	signing := encodedHeader + "." + base64.RawURLEncoding.EncodeToString(body)
	sig := c.sign(signing)

	return signing + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Verify checks a token and returns its payload.
//
// Order matters: the signature is checked (constant-time) before the payload
// is decoded, so a tampered payload always surfaces as ErrInvalidSignature
// and attacker-controlled bytes never reach the JSON decoder.
func (c *Codec) Verify(token string) (Payload, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return Payload{}, ErrInvalidToken
	}

	providedSig, err := base64.RawURLEncoding.DecodeString(segments[2])
	if err != nil {
		return Payload{}, ErrInvalidSignature
	}

	expectedSig := c.sign(segments[0] + "." + segments[1])
	if !hmac.Equal(providedSig, expectedSig) {
		return Payload{}, ErrInvalidSignature
	}

	body, err := base64.RawURLEncoding.DecodeString(segments[1])
	if err != nil {
		return Payload{}, ErrInvalidToken
	}

	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Payload{}, ErrInvalidToken
	}
	if err := p.validate(); err != nil {
		return Payload{}, err
	}

	if time.Now().UTC().Unix() >= p.ExpiresAt {
		return Payload{}, ErrTokenExpired
	}

	return p, nil
}

func (c *Codec) sign(data string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

// validate fails closed on malformed payloads.
func (p Payload) validate() error {
	if p.JTI == "" || p.InviterID == "" {
		return ErrInvalidToken
	}
	if p.IssuedAt == 0 || p.ExpiresAt == 0 {
		return ErrInvalidToken
	}

	switch p.Type {
	case TypeConnection:
		if p.ListID != "" {
			return ErrInvalidToken
		}
	case TypeList:
		if p.ListID == "" {
			return ErrInvalidToken
		}
	default:
		return ErrInvalidToken
	}

	return nil
}
