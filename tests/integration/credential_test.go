package integration

import (
	"context"
	"testing"
	"time"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/models"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/services"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialService_Integration_IssueAndValidate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := fixtures.Credentials
	ctx := context.Background()

	cred, rawKey := fixtures.IssueCredential(t, "partner-integration", []string{"example.com"})

	assert.Len(t, rawKey, services.RawKeyLength)
	assert.NotEqual(t, rawKey, cred.KeyHash, "raw key must never be stored")
	assert.Equal(t, rawKey[:services.KeyPrefixLength], cred.KeyPrefix)

	// Lookup by prefix finds the stored record
	found, err := svc.FindByPrefix(ctx, cred.KeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, cred.ID, found.ID)

	assert.True(t, svc.ValidateKey(found, rawKey))
	assert.False(t, svc.ValidateKey(found, rawKey[:services.RawKeyLength-1]+"x"))
}

func TestCredentialService_Integration_UsageTracking(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := fixtures.Credentials
	ctx := context.Background()

	cred, _ := fixtures.IssueCredential(t, "usage-tracking", nil)

	require.NoError(t, svc.IncrementUsage(ctx, cred, models.EndpointBookings))
	require.NoError(t, svc.IncrementUsage(ctx, cred, models.EndpointBookings))
	require.NoError(t, svc.IncrementUsage(ctx, cred, models.Endpoint("unknown")))

	assert.Equal(t, int64(3), cred.TotalRequests)
	assert.Equal(t, int64(2), cred.EndpointUsage[models.EndpointBookings])
	require.NotNil(t, cred.LastUsedAt)

	// Once the rolling window lapses the next request starts a fresh count
	fixtures.BackdateUsageReset(t, cred.ID, time.Now().Add(-31*24*time.Hour))
	require.NoError(t, svc.IncrementUsage(ctx, cred, models.EndpointBookings))

	assert.Equal(t, int64(1), cred.TotalRequests)
	assert.Equal(t, int64(1), cred.EndpointUsage[models.EndpointBookings])
}

func TestCredentialService_Integration_Rotate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := fixtures.Credentials
	ctx := context.Background()

	old, oldKey := fixtures.IssueCredential(t, "rotation-target", []string{"example.com"})

	successor, newKey, err := svc.Rotate(ctx, old, "admin@vale.test")
	require.NoError(t, err)

	require.NotNil(t, successor.RotatedFrom)
	assert.Equal(t, old.ID, *successor.RotatedFrom)
	assert.NotEqual(t, oldKey, newKey)
	assert.Equal(t, old.DomainWhitelist, successor.DomainWhitelist)
	assert.True(t, svc.ValidateKey(successor, newKey))

	// The predecessor is deactivated and no longer resolvable by prefix
	stored, err := svc.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.NotNil(t, stored.RotatedAt)

	_, err = svc.FindByPrefix(ctx, old.KeyPrefix)
	assert.ErrorIs(t, err, services.ErrCredentialNotFound)
}

func TestCredentialService_Integration_CleanupExpired(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := fixtures.Credentials
	ctx := context.Background()

	purgeable, _ := fixtures.IssueCredential(t, "purgeable", nil)
	require.NoError(t, svc.Deactivate(ctx, purgeable.ID))
	fixtures.ExpireCredential(t, purgeable.ID, time.Now().Add(-31*24*time.Hour))

	// Expired but still active, so retention keeps it around
	retained, _ := fixtures.IssueCredential(t, "retained", nil)
	fixtures.ExpireCredential(t, retained.ID, time.Now().Add(-31*24*time.Hour))

	deleted, err := svc.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = svc.GetByID(ctx, purgeable.ID)
	assert.ErrorIs(t, err, services.ErrCredentialNotFound)

	_, err = svc.GetByID(ctx, retained.ID)
	assert.NoError(t, err)
}

func TestCredentialService_Integration_Authorize(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := fixtures.Credentials
	ctx := context.Background()

	cred, rawKey := fixtures.IssueCredential(t, "authorize-flow", []string{"example.com"})

	decision := svc.Authorize(ctx, rawKey, "https://example.com", models.EndpointBookings)
	assert.True(t, decision.Allowed)
	require.NotNil(t, decision.Credential)
	assert.Equal(t, cred.ID, decision.Credential.ID)
	assert.Equal(t, int64(1), decision.Credential.TotalRequests)

	denied := svc.Authorize(ctx, rawKey, "https://evil.net", models.EndpointBookings)
	assert.False(t, denied.Allowed)
	assert.Equal(t, services.DenyDomainNotWhitelisted, denied.Reason)
	assert.Equal(t, "invalid or unauthorized api key", denied.Message)
}
