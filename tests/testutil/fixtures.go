package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/config"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/cryptoutil"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/database"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/models"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TestConfig returns service configuration suitable for tests
func TestConfig() *config.Config {
	return &config.Config{
		EncryptionKey:        "test-encryption-key",
		EncryptionSalt:       "test-hash-salt",
		JWTSecret:            "test-secret-key-for-testing-only",
		KeyRotationDays:      90,
		KeyRetentionDays:     30,
		MaxWhitelistDomains:  10,
		RateLimitWindow:      15 * time.Minute,
		RateLimitMaxRequests: 1000,
	}
}

// Fixtures provides helpers for creating test data
type Fixtures struct {
	db *database.DB

	Credentials *services.CredentialService
	Bookings    *services.BookingService
}

// NewFixtures creates a fixtures helper wired to the given database
func NewFixtures(db *database.DB) *Fixtures {
	cfg := TestConfig()
	log := zap.NewNop()
	refs := services.NewReferenceService(log, 0, services.NoDelay)
	keys := cryptoutil.NewKeyring(cfg.EncryptionKey, cfg.EncryptionSalt)
	return &Fixtures{
		db:          db,
		Credentials: services.NewCredentialService(db, cfg, log),
		Bookings:    services.NewBookingService(db, refs, keys),
	}
}

// IssueCredential issues a credential and returns it with its raw key
func (f *Fixtures) IssueCredential(t *testing.T, name string, domains []string) (*models.APICredential, string) {
	t.Helper()
	cred, rawKey, err := f.Credentials.Issue(context.Background(), services.IssueParams{
		Name:            name,
		DomainWhitelist: domains,
	}, "fixtures@vale.test")
	if err != nil {
		t.Fatalf("failed to issue credential: %v", err)
	}
	return cred, rawKey
}

// CreateBooking creates a guest booking with a freshly allocated reference
func (f *Fixtures) CreateBooking(t *testing.T, guestName, guestEmail string, createdVia *uuid.UUID) *models.GuestBooking {
	t.Helper()
	booking, err := f.Bookings.CreateGuestBooking(context.Background(), guestName, guestEmail, createdVia)
	if err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}
	return booking
}

// BackdateUsageReset moves a credential's usage reset marker into the past
func (f *Fixtures) BackdateUsageReset(t *testing.T, id uuid.UUID, resetAt time.Time) {
	t.Helper()
	_, err := f.db.Pool.Exec(context.Background(),
		"UPDATE api_credentials SET last_reset_at = $1 WHERE id = $2", resetAt, id)
	if err != nil {
		t.Fatalf("failed to backdate usage reset: %v", err)
	}
}

// ExpireCredential overrides a credential's expiry timestamp
func (f *Fixtures) ExpireCredential(t *testing.T, id uuid.UUID, expiresAt time.Time) {
	t.Helper()
	_, err := f.db.Pool.Exec(context.Background(),
		"UPDATE api_credentials SET expires_at = $1 WHERE id = $2", expiresAt, id)
	if err != nil {
		t.Fatalf("failed to set credential expiry: %v", err)
	}
}
