package profile

import (
	"context"
	"errors"

	"github.com/rescue-chip/core/internal/models"
	"github.com/rescue-chip/core/internal/pkg/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db        *gorm.DB
	presigner *storage.Presigner
	logger    *zap.Logger
}

func NewService(db *gorm.DB, presigner *storage.Presigner, logger *zap.Logger) *Service {
	return &Service{db: db, presigner: presigner, logger: logger}
}

func (s *Service) chipByFolio(ctx context.Context, folio string) (*models.Chip, error) {
	var chip models.Chip
	err := s.db.WithContext(ctx).Where("folio = ?", NormalizeFolio(folio)).First(&chip).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChipNotFound
	}
	if err != nil {
		return nil, err
	}
	if !chip.Active {
		return nil, ErrChipInactive
	}
	return &chip, nil
}

func (s *Service) profileByChip(ctx context.Context, chipID string) (*models.MedicalProfile, error) {
	var mp models.MedicalProfile
	err := s.db.WithContext(ctx).Where("chip_id = ?", chipID).First(&mp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mp, nil
}

// Get resolves the public emergency profile for a folio.
func (s *Service) Get(ctx context.Context, folio string) (*PublicProfile, error) {
	chip, err := s.chipByFolio(ctx, folio)
	if err != nil {
		return nil, err
	}
	mp, err := s.profileByChip(ctx, chip.ID)
	if err != nil {
		return nil, err
	}

	out := &PublicProfile{
		Folio:             chip.Folio,
		FullName:          mp.FullName,
		BloodType:         mp.BloodType,
		Allergies:         mp.Allergies,
		Conditions:        mp.Conditions,
		Medications:       mp.Medications,
		EmergencyContacts: mp.EmergencyContacts,
		InsurerName:       mp.InsurerName,
		InsurerPhone:      mp.InsurerPhone,
		Notes:             mp.Notes,
	}
	if mp.BirthDate != nil {
		out.BirthDate = mp.BirthDate.Format("2006-01-02")
	}
	if out.Allergies == nil {
		out.Allergies = []string{}
	}
	if out.Conditions == nil {
		out.Conditions = []string{}
	}
	if out.Medications == nil {
		out.Medications = []string{}
	}
	if out.EmergencyContacts == nil {
		out.EmergencyContacts = []models.EmergencyContact{}
	}

	if mp.PolicyDocumentKey != "" && s.presigner != nil {
		url, err := s.presigner.DocumentURL(ctx, mp.PolicyDocumentKey)
		if err != nil {
			s.logger.Warn("failed to presign policy document",
				zap.String("folio", chip.Folio), zap.Error(err))
		} else {
			out.PolicyDocumentURL = url
		}
	}

	return out, nil
}

// ResolveRecipients gathers the owner's account contact info and the
// profile's emergency-contact list for an alert fan-out.
func (s *Service) ResolveRecipients(ctx context.Context, folio string) (*Recipients, error) {
	chip, err := s.chipByFolio(ctx, folio)
	if err != nil {
		return nil, err
	}
	mp, err := s.profileByChip(ctx, chip.ID)
	if err != nil {
		return nil, err
	}

	out := &Recipients{
		Folio:     chip.Folio,
		OwnerName: mp.FullName,
		Contacts:  mp.EmergencyContacts,
	}

	var owner models.UserModel
	err = s.db.WithContext(ctx).Select("name", "mail", "phone").
		Where("id = ?", mp.UserID).First(&owner).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		out.OwnerMail = owner.Mail
		out.OwnerPhone = owner.Phone
		if out.OwnerName == "" {
			out.OwnerName = owner.Name
		}
	}

	return out, nil
}
