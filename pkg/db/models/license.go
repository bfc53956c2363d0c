package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
)

// License binds a desktop install to a dealership seat via a machine ID.
type License struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	DealershipID uuid.UUID           `gorm:"column:dealership_id;type:uuid;not null;index"`
	Key          string              `gorm:"column:key;not null;uniqueIndex"`
	MachineID    *string             `gorm:"column:machine_id"`
	Hostname     *string             `gorm:"column:hostname"`
	Platform     *string             `gorm:"column:platform"`
	AppVersion   *string             `gorm:"column:app_version"`
	Status       enums.LicenseStatus `gorm:"column:status;type:text;not null;default:'active'"`
	ExpiresAt    *time.Time          `gorm:"column:expires_at"`
	ActivatedAt  *time.Time          `gorm:"column:activated_at"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (l *License) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
