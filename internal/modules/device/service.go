package device

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rescue-chip/core/internal/models"
	"github.com/rescue-chip/core/internal/pkg/mail"
	"go.uber.org/zap"
)

// Service is the device-trust state machine: pending → verified|revoked,
// with the verification token as the only bridge between the two halves of
// the flow (the device's request and the mail link click).
type Service struct {
	store    Store
	dir      AccountDirectory
	sessions SessionRevoker
	mailer   Mailer
	webURL   string
	logger   *zap.Logger
}

func NewService(store Store, dir AccountDirectory, sessions SessionRevoker, mailer Mailer, webURL string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		dir:      dir,
		sessions: sessions,
		mailer:   mailer,
		webURL:   strings.TrimRight(webURL, "/"),
		logger:   logger.Named("device"),
	}
}

// Request registers a login attempt from a device. The session row is
// committed first and is the source of truth; the confirmation mail is
// attempted afterwards and its failure never aborts the transition.
func (s *Service) Request(ctx context.Context, userID, deviceID, deviceInfo string) error {
	token := uuid.New().String()
	expiresAt := time.Now().Add(TokenTTL)

	if _, err := s.store.Upsert(ctx, userID, deviceID, deviceInfo, token, expiresAt); err != nil {
		return err
	}

	addr, err := s.dir.MailAddress(ctx, userID)
	if err != nil || addr == "" {
		s.logger.Warn("no mail address for device confirmation",
			zap.String("user_id", userID), zap.Error(err))
		return nil
	}

	data := mail.DeviceVerifyData{
		DeviceInfo: deviceInfo,
		Date:       time.Now().Format("02/01/2006 15:04"),
		AllowURL:   s.confirmURL(token, ActionAllow),
		RevokeURL:  s.confirmURL(token, ActionRevoke),
	}
	if err := s.mailer.SendDeviceVerify(addr, data); err != nil {
		s.logger.Warn("device confirmation mail failed",
			zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}

// Confirm settles a pending session from a mail link. The token is consumed
// exactly once; a duplicate or replayed link gets ErrInvalidToken.
//
// allow: every sibling session of the user is revoked, then this one
// becomes verified, keeping one active device at a time.
// revoke: every session of the user is revoked and the account provider is
// asked (best-effort) to kill the user's live auth sessions too.
func (s *Service) Confirm(ctx context.Context, token, action string) (*models.DeviceSession, error) {
	if action != ActionAllow && action != ActionRevoke {
		return nil, ErrUnknownAction
	}

	sess, err := s.store.ClaimToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if action == ActionAllow {
		if err := s.store.MarkVerified(ctx, sess); err != nil {
			return nil, err
		}
		sess.Status = models.DeviceStatusVerified
		s.logger.Info("device allowed",
			zap.String("user_id", sess.UserID), zap.String("device_id", sess.DeviceID))
		return sess, nil
	}

	if err := s.store.RevokeUser(ctx, sess.UserID); err != nil {
		return nil, err
	}
	sess.Status = models.DeviceStatusRevoked
	s.logger.Info("device revoked, closing all sessions",
		zap.String("user_id", sess.UserID), zap.String("device_id", sess.DeviceID))

	// DB state is committed; the provider call may fail without undoing it.
	if s.sessions != nil {
		if err := s.sessions.RevokeAll(ctx, sess.UserID); err != nil {
			s.logger.Warn("global signout failed",
				zap.String("user_id", sess.UserID), zap.Error(err))
		}
	}
	return sess, nil
}

func (s *Service) confirmURL(token, action string) string {
	return fmt.Sprintf("%s/device/verify/confirm?token=%s&action=%s", s.webURL, token, action)
}
