package models

import (
	"time"

	"github.com/google/uuid"
)

// GuestBooking is the thin slice of a booking this subsystem touches: the
// public reference number is allocated here, everything else is owned by
// the booking CRUD layer.
type GuestBooking struct {
	ID              uuid.UUID  `json:"id"`
	ReferenceNumber string     `json:"reference_number"`
	GuestName       string     `json:"guest_name"`
	GuestEmail      string     `json:"guest_email"`
	CreatedVia      *uuid.UUID `json:"created_via,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
