package models

import "time"

// DeviceSessionStatus is the trust state of a (user, device) pair.
type DeviceSessionStatus string

const (
	DeviceStatusPending  DeviceSessionStatus = "pending"
	DeviceStatusVerified DeviceSessionStatus = "verified"
	DeviceStatusRevoked  DeviceSessionStatus = "revoked"
)

// DeviceSession records the trust decision for one device of one user.
// At most one row exists per (user_id, device_id); rows are never deleted,
// a device is "removed" only by moving to revoked. The verification token
// is single-use: it is cleared in the same statement that claims it.
type DeviceSession struct {
	Base
	UserID            string              `json:"user_id"     gorm:"uniqueIndex:idx_user_device;not null"`
	DeviceID          string              `json:"device_id"   gorm:"uniqueIndex:idx_user_device;not null"`
	DeviceInfo        string              `json:"device_info" gorm:"type:text"`
	Status            DeviceSessionStatus `json:"status"      gorm:"type:varchar(16);index;not null;default:pending"`
	VerificationToken *string             `json:"-"           gorm:"type:char(36);uniqueIndex"`
	TokenExpiresAt    *time.Time          `json:"-"`
}

func (DeviceSession) TableName() string { return "device_sessions" }
