package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
)

// Vehicle is an inventory unit. Status transitions (available -> reserved/sold)
// happen as a side effect of deal completion, not through direct edits.
type Vehicle struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	DealershipID uuid.UUID           `gorm:"column:dealership_id;type:uuid;not null;index"`
	VIN          string              `gorm:"column:vin;not null;uniqueIndex"`
	StockNumber  *string             `gorm:"column:stock_number"`
	Year         int                 `gorm:"column:year;not null"`
	Make         string              `gorm:"column:make;not null"`
	Model        string              `gorm:"column:model;not null"`
	Trim         *string             `gorm:"column:trim"`
	Body         *string             `gorm:"column:body"`
	Transmission *string             `gorm:"column:transmission"`
	Engine       *string             `gorm:"column:engine"`
	Mileage      int                 `gorm:"column:mileage;not null"`
	Color        *string             `gorm:"column:color"`
	Price        float64             `gorm:"column:price;type:numeric(12,2);not null"`
	Cost         *float64            `gorm:"column:cost;type:numeric(12,2)"`
	Status       enums.VehicleStatus `gorm:"column:status;type:text;not null;default:'available'"`
	Description  *string             `gorm:"column:description"`
	Images       []string            `gorm:"column:images;serializer:json"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *Vehicle) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
