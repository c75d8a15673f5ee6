package models

import "time"

// Chip is one physical NFC tag. Folios are stored upper-cased so per-folio
// lookups and rate-limit keys are case-insensitive.
type Chip struct {
	Base
	Folio       string     `json:"folio"  gorm:"uniqueIndex;not null"`
	Active      bool       `json:"active" gorm:"index"`
	ActivatedAt *time.Time `json:"activated_at"`
}

func (Chip) TableName() string { return "chips" }

// EmergencyContact is one entry of a profile's contact list, embedded as JSON.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Mail         string `json:"mail,omitempty"`
}

// MedicalProfile is the emergency profile behind a chip. The medical CRUD
// surface lives in the dashboard service; this service only reads these rows
// to resolve alert recipients and to render the public emergency view.
type MedicalProfile struct {
	Base
	UserID            string             `json:"user_id" gorm:"index;not null"`
	ChipID            string             `json:"chip_id" gorm:"uniqueIndex;not null"`
	FullName          string             `json:"full_name"`
	BirthDate         *time.Time         `json:"birth_date"`
	BloodType         string             `json:"blood_type"`
	Allergies         []string           `json:"allergies"          gorm:"type:longtext;serializer:json"`
	Conditions        []string           `json:"conditions"         gorm:"type:longtext;serializer:json"`
	Medications       []string           `json:"medications"        gorm:"type:longtext;serializer:json"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts" gorm:"type:longtext;serializer:json"`
	InsurerName       string             `json:"insurer_name"`
	InsurerPhone      string             `json:"insurer_phone"`
	PolicyDocumentKey string             `json:"-"` // object key of the insurance policy PDF
	Notes             string             `json:"notes" gorm:"type:text"`
}

func (MedicalProfile) TableName() string { return "medical_profiles" }
