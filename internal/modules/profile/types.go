package profile

import (
	"errors"
	"strings"

	"github.com/rescue-chip/core/internal/models"
)

var (
	ErrChipNotFound    = errors.New("chip not found")
	ErrChipInactive    = errors.New("chip inactive")
	ErrProfileNotFound = errors.New("profile not found")
)

// PublicProfile is the read-only emergency view of a medical profile.
// It never carries account identifiers.
type PublicProfile struct {
	Folio             string                    `json:"folio"`
	FullName          string                    `json:"full_name"`
	BirthDate         string                    `json:"birth_date,omitempty"`
	BloodType         string                    `json:"blood_type,omitempty"`
	Allergies         []string                  `json:"allergies"`
	Conditions        []string                  `json:"conditions"`
	Medications       []string                  `json:"medications"`
	EmergencyContacts []models.EmergencyContact `json:"emergency_contacts"`
	InsurerName       string                    `json:"insurer_name,omitempty"`
	InsurerPhone      string                    `json:"insurer_phone,omitempty"`
	PolicyDocumentURL string                    `json:"policy_document_url,omitempty"`
	Notes             string                    `json:"notes,omitempty"`
}

// Recipients is the raw contact material for an emergency fan-out,
// before any normalization or deduplication.
type Recipients struct {
	Folio      string
	OwnerName  string
	OwnerMail  string
	OwnerPhone string
	Contacts   []models.EmergencyContact
}

// NormalizeFolio canonicalizes a chip folio the way it is stored.
func NormalizeFolio(folio string) string {
	return strings.ToUpper(strings.TrimSpace(folio))
}
