package scan

import (
	"context"

	"github.com/rescue-chip/core/internal/models"
	"github.com/rescue-chip/core/internal/modules/notify"
)

// LogDTO is the consent-screen payload posted by the public scan page.
// session_token is an opaque per-visit correlation id generated by the
// client, not a credential.
type LogDTO struct {
	ChipFolio    string   `json:"chip_folio" binding:"required"`
	ScanType     string   `json:"scan_type" binding:"required"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	SessionToken string   `json:"session_token" binding:"required"`
}

// Entry is one consent choice, enriched with request metadata.
type Entry struct {
	ChipFolio    string
	ScanType     models.ScanType
	Latitude     *float64
	Longitude    *float64
	IPAddress    string
	UserAgent    string
	SessionToken string
}

type Appender interface {
	Append(ctx context.Context, row *models.ScanAccessLog) error
}

type Notifier interface {
	Dispatch(ctx context.Context, ev notify.Event) error
}
