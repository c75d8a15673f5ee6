package device

import (
	"context"
	"errors"
	"time"

	"github.com/rescue-chip/core/internal/models"
	"github.com/rescue-chip/core/internal/pkg/mail"
)

// TokenTTL is the fixed lifetime of a verification token. Tokens are never
// extended; a re-attempt from the device issues a fresh one.
const TokenTTL = 15 * time.Minute

// Confirmation actions carried by the mail links.
const (
	ActionAllow  = "allow"
	ActionRevoke = "revoke"
)

var (
	ErrInvalidToken  = errors.New("verification token invalid or already used")
	ErrTokenExpired  = errors.New("verification token expired")
	ErrUnknownAction = errors.New("unknown confirmation action")
)

// RequestDTO is the body of POST /device/verify/request.
type RequestDTO struct {
	DeviceID   string `json:"device_id"   binding:"required"`
	DeviceInfo string `json:"device_info"`
}

// Store persists device-trust records. The implementation must make
// ClaimToken an atomic consume: of any number of concurrent claims for the
// same token, exactly one succeeds.
type Store interface {
	// Upsert creates or resets the (user, device) session to pending with a
	// fresh token.
	Upsert(ctx context.Context, userID, deviceID, deviceInfo, token string, expiresAt time.Time) (*models.DeviceSession, error)
	// ClaimToken consumes the token and returns the session it belonged to.
	// Returns ErrInvalidToken when unknown or already consumed, and
	// ErrTokenExpired (without consuming) when past its expiry.
	ClaimToken(ctx context.Context, token string) (*models.DeviceSession, error)
	// MarkVerified revokes every sibling session of the user and sets this
	// one verified, in one transaction.
	MarkVerified(ctx context.Context, sess *models.DeviceSession) error
	// RevokeUser revokes every device session of the user and clears any
	// outstanding tokens.
	RevokeUser(ctx context.Context, userID string) error
}

// AccountDirectory resolves the account's verified mail address.
type AccountDirectory interface {
	MailAddress(ctx context.Context, userID string) (string, error)
}

// SessionRevoker invalidates the user's live authentication sessions at the
// account-provider level. Calls are best-effort.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, userID string) error
}

// Mailer sends the two-link confirmation mail.
type Mailer interface {
	SendDeviceVerify(to string, data mail.DeviceVerifyData) error
}
