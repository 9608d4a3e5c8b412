package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/marcovaldez/tiendapos-backend/pkg/db/models"
)

// RegisterRequest creates an owner account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest authenticates an owner.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest rotates an owner session.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// OwnerSummary is the owner view returned by auth endpoints.
type OwnerSummary struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// AuthResponse is the token pair plus the owner it belongs to.
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	Owner        OwnerSummary `json:"owner"`
	BusinessID   *uuid.UUID   `json:"business_id,omitempty"`
}

func summaryFromModel(owner *models.OwnerUser) OwnerSummary {
	if owner == nil {
		return OwnerSummary{}
	}
	return OwnerSummary{
		ID:          owner.ID,
		Email:       owner.Email,
		LastLoginAt: owner.LastLoginAt,
	}
}
