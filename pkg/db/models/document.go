package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
)

// Document records a generated artifact attached to a deal. Rows are immutable
// once created except for deletion.
type Document struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	DealID    uuid.UUID          `gorm:"column:deal_id;type:uuid;not null;index"`
	Type      enums.DocumentType `gorm:"column:type;type:text;not null"`
	Filename  string             `gorm:"column:filename;not null"`
	FileSize  *int64             `gorm:"column:file_size"`
	Checksum  *string            `gorm:"column:checksum"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (d *Document) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
