package vehicles

import (
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
	"github.com/universalautobrokers/dealerdesk-backend/pkg/enums"
)

// Filters describe the inputs supported by the vehicle list.
type Filters struct {
	Status *enums.VehicleStatus
	// Query matches against VIN, stock number, make and model.
	Query string
}

// VehicleList wraps the paginated vehicles plus the next page cursor.
type VehicleList struct {
	Vehicles   []models.Vehicle `json:"vehicles"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// CreateInput captures the fields accepted when adding inventory.
type CreateInput struct {
	VIN          string
	StockNumber  *string
	Year         int
	Make         string
	Model        string
	Trim         *string
	Body         *string
	Transmission *string
	Engine       *string
	Mileage      int
	Color        *string
	Price        float64
	Cost         *float64
	Description  *string
	Images       []string
}

// UpdateInput is a sparse patch. Nil fields are left unchanged. Status is
// deliberately absent: it only changes through deal completion.
type UpdateInput struct {
	StockNumber  *string
	Year         *int
	Make         *string
	Model        *string
	Trim         *string
	Body         *string
	Transmission *string
	Engine       *string
	Mileage      *int
	Color        *string
	Price        *float64
	Cost         *float64
	Description  *string
	Images       []string
}
