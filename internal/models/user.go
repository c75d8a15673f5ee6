package models

import "time"

// UserModel represents a chip owner account.
type UserModel struct {
	Base
	Username      string     `json:"username"  gorm:"uniqueIndex;not null"`
	Name          string     `json:"name"`
	Password      string     `json:"-"         gorm:"not null"`
	Mail          string     `json:"mail"`
	Phone         string     `json:"phone"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
}

func (UserModel) TableName() string { return "users" }
