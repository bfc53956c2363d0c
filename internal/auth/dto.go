package auth

import (
	"github.com/universalautobrokers/dealerdesk-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RegisterRequest provisions a dealership together with its owner account.
type RegisterRequest struct {
	DealershipName string `json:"dealership_name" validate:"required,min=2,max=120"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=10,max=128"`
	FirstName      string `json:"first_name" validate:"required,min=1,max=80"`
	LastName       string `json:"last_name" validate:"required,min=1,max=80"`
}

// RefreshRequest rotates the caller's session.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the replacement token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
