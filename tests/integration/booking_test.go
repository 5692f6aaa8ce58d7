package integration

import (
	"context"
	"testing"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/services"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingService_Integration_CreateAndLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	ctx := context.Background()

	cred, _ := fixtures.IssueCredential(t, "booking-widget", nil)
	booking := fixtures.CreateBooking(t, "Ada Guest", "ada@example.com", &cred.ID)

	assert.True(t, services.ValidReference(booking.ReferenceNumber))
	require.NotNil(t, booking.CreatedVia)
	assert.Equal(t, cred.ID, *booking.CreatedVia)

	found, err := fixtures.Bookings.GetByReference(ctx, booking.ReferenceNumber)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, found.ID)
	assert.Equal(t, "ada@example.com", found.GuestEmail)

	// The stored column holds ciphertext, not the address
	var stored string
	err = tdb.DB.Pool.QueryRow(ctx,
		"SELECT guest_email FROM guest_bookings WHERE id = $1", booking.ID).Scan(&stored)
	require.NoError(t, err)
	assert.NotEqual(t, "ada@example.com", stored)
	assert.NotContains(t, stored, "example.com")
}

func TestBookingService_Integration_ReferencesAreUnique(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		booking := fixtures.CreateBooking(t, "Ada Guest", "ada@example.com", nil)
		assert.False(t, seen[booking.ReferenceNumber], "reference %q allocated twice", booking.ReferenceNumber)
		seen[booking.ReferenceNumber] = true
	}
}

func TestBookingService_Integration_UnknownReference(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	ctx := context.Background()

	_, err := fixtures.Bookings.GetByReference(ctx, "WZZZZZZZ")
	assert.ErrorIs(t, err, services.ErrBookingNotFound)
}
