package scan

import (
	"context"
	"errors"
	"time"

	"github.com/rescue-chip/core/internal/models"
	"github.com/rescue-chip/core/internal/modules/notify"
	"github.com/rescue-chip/core/internal/modules/profile"
	"go.uber.org/zap"
)

type Service struct {
	store    Appender
	notifier Notifier
	logger   *zap.Logger
}

func NewService(store Appender, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{store: store, notifier: notifier, logger: logger}
}

// Log records a consent choice and, for real emergencies, triggers the
// alert fan-out. A failed insert never blocks the emergency flow; the
// only error callers see is notify.ErrRateLimited.
func (s *Service) Log(ctx context.Context, entry Entry) error {
	folio := profile.NormalizeFolio(entry.ChipFolio)

	row := &models.ScanAccessLog{
		ChipFolio:    folio,
		ScanType:     entry.ScanType,
		Latitude:     entry.Latitude,
		Longitude:    entry.Longitude,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
		SessionToken: entry.SessionToken,
	}
	if err := s.store.Append(ctx, row); err != nil {
		s.logger.Error("failed to append scan access log",
			zap.String("folio", folio),
			zap.String("scan_type", string(entry.ScanType)),
			zap.Error(err))
	}

	if entry.ScanType != models.ScanTypeEmergency {
		return nil
	}

	err := s.notifier.Dispatch(ctx, notify.Event{
		Folio:      folio,
		Latitude:   entry.Latitude,
		Longitude:  entry.Longitude,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		OccurredAt: time.Now(),
	})
	if errors.Is(err, notify.ErrRateLimited) {
		return err
	}
	if err != nil {
		// Whether alerts went out is never exposed to the scanner.
		s.logger.Error("emergency fan-out failed", zap.String("folio", folio), zap.Error(err))
	}
	return nil
}
