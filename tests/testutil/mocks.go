package testutil

import (
	"context"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/models"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCredentialService mocks the CredentialService
type MockCredentialService struct {
	mock.Mock
}

func (m *MockCredentialService) Issue(ctx context.Context, params services.IssueParams, createdBy string) (*models.APICredential, string, error) {
	args := m.Called(ctx, params, createdBy)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.APICredential), args.String(1), args.Error(2)
}

func (m *MockCredentialService) FindActive(ctx context.Context) ([]models.APICredential, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.APICredential), args.Error(1)
}

func (m *MockCredentialService) GetByID(ctx context.Context, id uuid.UUID) (*models.APICredential, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.APICredential), args.Error(1)
}

func (m *MockCredentialService) Rotate(ctx context.Context, cred *models.APICredential, createdBy string) (*models.APICredential, string, error) {
	args := m.Called(ctx, cred, createdBy)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.APICredential), args.String(1), args.Error(2)
}

func (m *MockCredentialService) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCredentialService) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockBookingService mocks the BookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateGuestBooking(ctx context.Context, guestName, guestEmail string, createdVia *uuid.UUID) (*models.GuestBooking, error) {
	args := m.Called(ctx, guestName, guestEmail, createdVia)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuestBooking), args.Error(1)
}

func (m *MockBookingService) GetByReference(ctx context.Context, reference string) (*models.GuestBooking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuestBooking), args.Error(1)
}
