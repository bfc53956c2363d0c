package clients

import (
	"github.com/universalautobrokers/dealerdesk-backend/pkg/db/models"
)

// Filters describe the inputs supported by the client list.
type Filters struct {
	// Query matches against name, email and phone.
	Query string
}

// ClientList wraps the paginated clients plus the next page cursor.
type ClientList struct {
	Clients    []models.Client `json:"clients"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// CreateInput captures the fields accepted when registering a client.
type CreateInput struct {
	FirstName      string
	LastName       string
	Email          *string
	Phone          *string
	Address        *string
	City           *string
	State          *string
	ZipCode        *string
	DriversLicense *string
}

// UpdateInput is a sparse patch. Nil fields are left unchanged.
type UpdateInput struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Phone          *string
	Address        *string
	City           *string
	State          *string
	ZipCode        *string
	DriversLicense *string
}
