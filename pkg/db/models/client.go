package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a buyer record referenced by deals, never owned by them.
type Client struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	DealershipID   uuid.UUID `gorm:"column:dealership_id;type:uuid;not null;index"`
	FirstName      string    `gorm:"column:first_name;not null"`
	LastName       string    `gorm:"column:last_name;not null"`
	Email          *string   `gorm:"column:email"`
	Phone          *string   `gorm:"column:phone"`
	Address        *string   `gorm:"column:address"`
	City           *string   `gorm:"column:city"`
	State          *string   `gorm:"column:state"`
	ZipCode        *string   `gorm:"column:zip_code"`
	DriversLicense *string   `gorm:"column:drivers_license"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Client) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
