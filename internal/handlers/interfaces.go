package handlers

import (
	"context"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/models"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/services"
	"github.com/google/uuid"
)

// CredentialServiceInterface defines the methods needed by the credential handler
type CredentialServiceInterface interface {
	Issue(ctx context.Context, params services.IssueParams, createdBy string) (*models.APICredential, string, error)
	FindActive(ctx context.Context) ([]models.APICredential, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.APICredential, error)
	Rotate(ctx context.Context, cred *models.APICredential, createdBy string) (*models.APICredential, string, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	CleanupExpired(ctx context.Context) (int64, error)
}

// BookingServiceInterface defines the methods needed by the booking handler
type BookingServiceInterface interface {
	CreateGuestBooking(ctx context.Context, guestName, guestEmail string, createdVia *uuid.UUID) (*models.GuestBooking, error)
	GetByReference(ctx context.Context, reference string) (*models.GuestBooking, error)
}
