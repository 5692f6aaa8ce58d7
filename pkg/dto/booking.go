package dto

import "github.com/google/uuid"

type CreateGuestBookingRequest struct {
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
}

type GuestBookingResponse struct {
	ID              uuid.UUID `json:"id"`
	ReferenceNumber string    `json:"reference_number"`
	GuestName       string    `json:"guest_name"`
	GuestEmail      string    `json:"guest_email"`
	CreatedAt       string    `json:"created_at"`
}
