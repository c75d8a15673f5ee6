package scan

import (
	"context"

	"github.com/rescue-chip/core/internal/models"
	"gorm.io/gorm"
)

// GormStore appends scan access rows. Rows are write-once; nothing in
// this service updates or deletes them.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Append(ctx context.Context, row *models.ScanAccessLog) error {
	return s.db.WithContext(ctx).Create(row).Error
}
