package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/cryptoutil"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/database"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrInvalidReference = errors.New("malformed booking reference")
	ErrBookingNotFound  = errors.New("booking not found")
)

const uniqueViolationCode = "23505"

// BookingService owns the reference-number slice of guest bookings; the
// rest of booking CRUD lives elsewhere. Guest emails are sealed with the
// keyring before they touch storage.
type BookingService struct {
	db   *database.DB
	refs *ReferenceService
	keys *cryptoutil.Keyring
}

func NewBookingService(db *database.DB, refs *ReferenceService, keys *cryptoutil.Keyring) *BookingService {
	return &BookingService{db: db, refs: refs, keys: keys}
}

// CreateGuestBooking allocates a unique public reference and persists the
// booking. A concurrent caller can win the reference between the existence
// check and the insert; the unique constraint catches that race and the
// allocation is retried.
func (s *BookingService) CreateGuestBooking(ctx context.Context, guestName, guestEmail string, createdVia *uuid.UUID) (*models.GuestBooking, error) {
	const insertAttempts = 3

	sealedEmail, err := s.keys.Encrypt(guestEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to seal guest email: %w", err)
	}

	for attempt := 0; attempt < insertAttempts; attempt++ {
		reference, err := s.refs.GenerateUnique(ctx, s.referenceExists)
		if err != nil {
			return nil, err
		}

		booking := &models.GuestBooking{
			ReferenceNumber: reference,
			GuestName:       guestName,
			GuestEmail:      guestEmail,
			CreatedVia:      createdVia,
		}

		err = s.db.Pool.QueryRow(ctx, `
			INSERT INTO guest_bookings (reference_number, guest_name, guest_email, created_via)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at
		`, booking.ReferenceNumber, booking.GuestName, sealedEmail, booking.CreatedVia,
		).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
		if err == nil {
			return booking, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			continue
		}
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	return nil, ErrAllocationExhausted
}

// GetByReference validates the reference format before touching storage.
func (s *BookingService) GetByReference(ctx context.Context, reference string) (*models.GuestBooking, error) {
	if !ValidReference(reference) {
		return nil, ErrInvalidReference
	}

	var booking models.GuestBooking
	var sealedEmail string
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, reference_number, guest_name, guest_email, created_via, created_at, updated_at
		FROM guest_bookings
		WHERE reference_number = $1
	`, reference).Scan(
		&booking.ID, &booking.ReferenceNumber, &booking.GuestName,
		&sealedEmail, &booking.CreatedVia, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	booking.GuestEmail, err = s.keys.Decrypt(sealedEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal guest email: %w", err)
	}
	return &booking, nil
}

func (s *BookingService) referenceExists(ctx context.Context, reference string) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM guest_bookings WHERE reference_number = $1)
	`, reference).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
