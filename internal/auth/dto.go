package auth

import (
	"github.com/angelmondragon/restaurant-reviews/internal/users"
)

// RegisterRequest is the self-service sign-up payload.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,trimmed_email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Name     string `json:"name" validate:"required,max=120"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}
