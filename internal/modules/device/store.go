package device

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rescue-chip/core/internal/models"
	"gorm.io/gorm"
)

// GormStore is the MySQL-backed Store.
type GormStore struct{ db *gorm.DB }

func NewStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) Upsert(ctx context.Context, userID, deviceID, deviceInfo, token string, expiresAt time.Time) (*models.DeviceSession, error) {
	db := s.db.WithContext(ctx)

	var sess models.DeviceSession
	err := db.Where("user_id = ? AND device_id = ?", userID, deviceID).First(&sess).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sess = models.DeviceSession{
			UserID:            userID,
			DeviceID:          deviceID,
			DeviceInfo:        deviceInfo,
			Status:            models.DeviceStatusPending,
			VerificationToken: &token,
			TokenExpiresAt:    &expiresAt,
		}
		if err := db.Create(&sess).Error; err != nil {
			return nil, err
		}
		return &sess, nil
	case err != nil:
		return nil, err
	}

	// Re-attempt from a known device: back to pending with a fresh token,
	// whatever the previous status was.
	updates := map[string]interface{}{
		"status":             models.DeviceStatusPending,
		"device_info":        deviceInfo,
		"verification_token": token,
		"token_expires_at":   expiresAt,
	}
	if err := db.Model(&sess).Updates(updates).Error; err != nil {
		return nil, err
	}
	sess.Status = models.DeviceStatusPending
	sess.DeviceInfo = deviceInfo
	sess.VerificationToken = &token
	sess.TokenExpiresAt = &expiresAt
	return &sess, nil
}

func (s *GormStore) ClaimToken(ctx context.Context, token string) (*models.DeviceSession, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	db := s.db.WithContext(ctx)

	var sess models.DeviceSession
	err := db.Where("verification_token = ?", token).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if sess.TokenExpiresAt == nil || time.Now().After(*sess.TokenExpiresAt) {
		// Expired tokens are rejected without being consumed or mutating
		// the session.
		return nil, ErrTokenExpired
	}

	// Claim by clearing the token in the same statement that matches it.
	// Whoever sees RowsAffected == 1 owns the confirmation; a concurrent
	// duplicate observes an already-consumed token.
	res := db.Model(&models.DeviceSession{}).
		Where("id = ? AND verification_token = ?", sess.ID, token).
		Updates(map[string]interface{}{
			"verification_token": nil,
			"token_expires_at":   nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidToken
	}
	sess.VerificationToken = nil
	sess.TokenExpiresAt = nil
	return &sess, nil
}

func (s *GormStore) MarkVerified(ctx context.Context, sess *models.DeviceSession) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.DeviceSession{}).
			Where("user_id = ? AND id <> ?", sess.UserID, sess.ID).
			Updates(map[string]interface{}{
				"status":             models.DeviceStatusRevoked,
				"verification_token": nil,
				"token_expires_at":   nil,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.DeviceSession{}).
			Where("id = ?", sess.ID).
			Update("status", models.DeviceStatusVerified).Error
	})
}

func (s *GormStore) RevokeUser(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Model(&models.DeviceSession{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"status":             models.DeviceStatusRevoked,
			"verification_token": nil,
			"token_expires_at":   nil,
		}).Error
}

// ClearExpiredTokens drops token fields of sessions whose token lapsed
// unanswered. Sessions stay pending; the device has to re-request anyway.
func (s *GormStore) ClearExpiredTokens(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.DeviceSession{}).
		Where("verification_token IS NOT NULL AND token_expires_at < ?", time.Now()).
		Updates(map[string]interface{}{
			"verification_token": nil,
			"token_expires_at":   nil,
		})
	return res.RowsAffected, res.Error
}

// Directory is the gorm-backed AccountDirectory.
type Directory struct{ db *gorm.DB }

func NewDirectory(db *gorm.DB) *Directory { return &Directory{db: db} }

func (d *Directory) MailAddress(ctx context.Context, userID string) (string, error) {
	var u models.UserModel
	err := d.db.WithContext(ctx).Select("mail").Where("id = ?", userID).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(u.Mail), nil
}
