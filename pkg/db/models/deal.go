package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
)

// Deal links a client and a vehicle with the financial terms of the sale.
// TotalAmount and FinancedAmount are always derived from the five money inputs;
// they are recomputed on every write and never independently editable.
type Deal struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	DealershipID   uuid.UUID        `gorm:"column:dealership_id;type:uuid;not null;index"`
	ClientID       uuid.UUID        `gorm:"column:client_id;type:uuid;not null;index"`
	VehicleID      uuid.UUID        `gorm:"column:vehicle_id;type:uuid;not null;index"`
	CreatedBy      uuid.UUID        `gorm:"column:created_by;type:uuid;not null"`
	Type           enums.DealType   `gorm:"column:type;type:text;not null"`
	Status         enums.DealStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	SaleAmount     float64          `gorm:"column:sale_amount;type:numeric(12,2);not null"`
	SalesTax       float64          `gorm:"column:sales_tax;type:numeric(12,2);not null;default:0"`
	DocFee         float64          `gorm:"column:doc_fee;type:numeric(12,2);not null;default:0"`
	TradeInValue   float64          `gorm:"column:trade_in_value;type:numeric(12,2);not null;default:0"`
	DownPayment    float64          `gorm:"column:down_payment;type:numeric(12,2);not null;default:0"`
	TotalAmount    float64          `gorm:"column:total_amount;type:numeric(12,2);not null"`
	FinancedAmount float64          `gorm:"column:financed_amount;type:numeric(12,2);not null"`
	SaleDate       *time.Time       `gorm:"column:sale_date"`
	CobuyerData    *string          `gorm:"column:cobuyer_data"`
	Client         *Client          `gorm:"foreignKey:ClientID"`
	Vehicle        *Vehicle         `gorm:"foreignKey:VehicleID"`
	Documents      []Document       `gorm:"foreignKey:DealID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *Deal) BeforeCreate(_ *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
