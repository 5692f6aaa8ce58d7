package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/middleware"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/models"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/services"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type BookingHandler struct {
	bookingService BookingServiceInterface
}

func NewBookingHandler(bookingService BookingServiceInterface) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

func (h *BookingHandler) Create(c *drift.Context) {
	var req dto.CreateGuestBookingRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if strings.TrimSpace(req.GuestName) == "" || strings.TrimSpace(req.GuestEmail) == "" {
		c.BadRequest("guest name and email are required")
		return
	}

	var createdVia *uuid.UUID
	if id := middleware.GetCredentialID(c); id != uuid.Nil {
		createdVia = &id
	}

	booking, err := h.bookingService.CreateGuestBooking(context.Background(), req.GuestName, req.GuestEmail, createdVia)
	if err != nil {
		if errors.Is(err, services.ErrAllocationExhausted) {
			c.InternalServerError("could not allocate a booking reference, please retry")
			return
		}
		c.InternalServerError("failed to create booking")
		return
	}

	_ = c.JSON(201, toBookingResponse(booking))
}

func (h *BookingHandler) GetByReference(c *drift.Context) {
	reference := strings.ToUpper(c.Param("reference"))

	booking, err := h.bookingService.GetByReference(context.Background(), reference)
	if err != nil {
		if errors.Is(err, services.ErrInvalidReference) {
			c.BadRequest("malformed booking reference")
			return
		}
		c.NotFound("booking not found")
		return
	}

	_ = c.JSON(200, toBookingResponse(booking))
}

func toBookingResponse(booking *models.GuestBooking) dto.GuestBookingResponse {
	return dto.GuestBookingResponse{
		ID:              booking.ID,
		ReferenceNumber: booking.ReferenceNumber,
		GuestName:       booking.GuestName,
		GuestEmail:      booking.GuestEmail,
		CreatedAt:       booking.CreatedAt.Format(time.RFC3339),
	}
}
