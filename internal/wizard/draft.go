package wizard

import (
	"time"

	"github.com/google/uuid"
	"github.com/universalautobrokers/dealerdesk-backend/internal/pricing"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
)

// Draft is the working state of one deal creation flow. Each user carries at
// most one draft; it lives in memory only and is discarded on expiry, on
// submit, or when the user abandons it.
type Draft struct {
	UserID       uuid.UUID       `json:"user_id"`
	DealershipID uuid.UUID       `json:"dealership_id"`
	Step         Step            `json:"step"`
	ClientID     *uuid.UUID      `json:"client_id,omitempty"`
	VehicleID    *uuid.UUID      `json:"vehicle_id,omitempty"`
	Type         enums.DealType  `json:"type"`
	SaleAmount   *float64        `json:"sale_amount,omitempty"`
	SalesTax     *float64        `json:"sales_tax,omitempty"`
	DocFee       *float64        `json:"doc_fee,omitempty"`
	TradeInValue *float64        `json:"trade_in_value,omitempty"`
	DownPayment  *float64        `json:"down_payment,omitempty"`
	SaleDate     *time.Time      `json:"sale_date,omitempty"`
	CobuyerData  *string         `json:"cobuyer_data,omitempty"`
	Totals       pricing.Totals  `json:"totals"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Update is a sparse patch applied to a draft's deal details. Nil fields are
// left unchanged, so partial form saves never clobber earlier entries.
type Update struct {
	Type         *enums.DealType
	SaleAmount   *float64
	SalesTax     *float64
	DocFee       *float64
	TradeInValue *float64
	DownPayment  *float64
	SaleDate     *time.Time
	CobuyerData  *string
}

func (d *Draft) apply(update Update) {
	if update.Type != nil {
		d.Type = *update.Type
	}
	if update.SaleAmount != nil {
		d.SaleAmount = update.SaleAmount
	}
	if update.SalesTax != nil {
		d.SalesTax = update.SalesTax
	}
	if update.DocFee != nil {
		d.DocFee = update.DocFee
	}
	if update.TradeInValue != nil {
		d.TradeInValue = update.TradeInValue
	}
	if update.DownPayment != nil {
		d.DownPayment = update.DownPayment
	}
	if update.SaleDate != nil {
		d.SaleDate = update.SaleDate
	}
	if update.CobuyerData != nil {
		d.CobuyerData = update.CobuyerData
	}
}

// recompute refreshes the derived totals from the current money fields.
func (d *Draft) recompute() {
	d.Totals = pricing.Calculate(pricing.Inputs{
		SaleAmount:   pricing.AmountOrZero(d.SaleAmount),
		SalesTax:     d.SalesTax,
		DocFee:       d.DocFee,
		TradeInValue: d.TradeInValue,
		DownPayment:  d.DownPayment,
	})
}

// clone returns a deep copy so callers never share pointers with the store.
func (d *Draft) clone() *Draft {
	if d == nil {
		return nil
	}
	out := *d
	out.ClientID = clonePtr(d.ClientID)
	out.VehicleID = clonePtr(d.VehicleID)
	out.SaleAmount = clonePtr(d.SaleAmount)
	out.SalesTax = clonePtr(d.SalesTax)
	out.DocFee = clonePtr(d.DocFee)
	out.TradeInValue = clonePtr(d.TradeInValue)
	out.DownPayment = clonePtr(d.DownPayment)
	out.SaleDate = clonePtr(d.SaleDate)
	out.CobuyerData = clonePtr(d.CobuyerData)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
