package deals

import (
	"time"

	"github.com/google/uuid"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
)

// Actor identifies the authenticated user performing a deal operation.
type Actor struct {
	UserID       uuid.UUID
	DealershipID uuid.UUID
	Role         enums.MemberRole
}

// Filters describe the inputs supported by the deal list.
type Filters struct {
	Status   *enums.DealStatus
	Type     *enums.DealType
	DateFrom *time.Time
	DateTo   *time.Time
	// Query matches against the deal id, type and status.
	Query string
}

// DealList wraps the paginated deals plus the next page cursor.
type DealList struct {
	Deals      []models.Deal `json:"deals"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// CreateInput captures the fields accepted when persisting a deal.
type CreateInput struct {
	ClientID     uuid.UUID
	VehicleID    uuid.UUID
	Type         enums.DealType
	Status       *enums.DealStatus
	SaleAmount   float64
	SalesTax     *float64
	DocFee       *float64
	TradeInValue *float64
	DownPayment  *float64
	SaleDate     *time.Time
	CobuyerData  *string
}

// UpdateInput is a sparse patch. Nil fields are left unchanged. TotalAmount
// and FinancedAmount cannot be set directly; they are recomputed from the
// money fields on every write.
type UpdateInput struct {
	ClientID     *uuid.UUID
	VehicleID    *uuid.UUID
	Type         *enums.DealType
	Status       *enums.DealStatus
	SaleAmount   *float64
	SalesTax     *float64
	DocFee       *float64
	TradeInValue *float64
	DownPayment  *float64
	SaleDate     *time.Time
	CobuyerData  *string
}

// StatusStats aggregates deals in one status bucket.
type StatusStats struct {
	Status      enums.DealStatus `json:"status"`
	Count       int64            `json:"count"`
	TotalAmount float64          `json:"total_amount"`
	AvgAmount   float64          `json:"avg_amount"`
}

// Stats is the dealership-wide deal rollup shown on the dashboard.
type Stats struct {
	TotalCount  int64         `json:"total_count"`
	TotalAmount float64       `json:"total_amount"`
	ByStatus    []StatusStats `json:"by_status"`
}
