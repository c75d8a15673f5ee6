package notify

import (
	"context"
	"errors"
	"time"

	"github.com/rescue-chip/core/internal/modules/profile"
	"github.com/rescue-chip/core/internal/pkg/mail"
)

// ErrRateLimited means the per-folio emergency alert quota is exhausted.
var ErrRateLimited = errors.New("emergency alerts rate limited")

// Event is one emergency scan to fan out.
type Event struct {
	Folio      string
	Latitude   *float64
	Longitude  *float64
	IPAddress  string
	UserAgent  string
	OccurredAt time.Time
}

type RecipientResolver interface {
	ResolveRecipients(ctx context.Context, folio string) (*profile.Recipients, error)
}

type Mailer interface {
	SendEmergencyAlert(to []string, data mail.EmergencyAlertData) error
}

type PhoneSender interface {
	SendSMS(ctx context.Context, number, body string) error
	SendWhatsApp(ctx context.Context, number, body string) error
}
