package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/models"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
)

type stubAuthorizer struct {
	decision    services.Decision
	gotKey      string
	gotOrigin   string
	gotEndpoint models.Endpoint
}

func (s *stubAuthorizer) Authorize(_ context.Context, rawKey, origin string, endpoint models.Endpoint) services.Decision {
	s.gotKey = rawKey
	s.gotOrigin = origin
	s.gotEndpoint = endpoint
	return s.decision
}

func TestAPIKeyAuth_MissingKey(t *testing.T) {
	authorizer := &stubAuthorizer{}
	app := drift.New()

	app.Use(APIKeyAuth(authorizer, models.EndpointBookings))
	app.Post("/bookings", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, authorizer.gotKey, "authorizer is not consulted without a key")
}

func TestAPIKeyAuth_DeniedIsGeneric(t *testing.T) {
	authorizer := &stubAuthorizer{decision: services.Decision{
		Allowed: false,
		Reason:  services.DenyDomainNotWhitelisted,
		Message: "invalid or unauthorized api key",
	}}
	app := drift.New()

	app.Use(APIKeyAuth(authorizer, models.EndpointBookings))
	app.Post("/bookings", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
	req.Header.Set("X-API-Key", strings.Repeat("ab", 32))
	req.Header.Set("Origin", "https://evil.net")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or unauthorized api key")
	assert.NotContains(t, rec.Body.String(), "domain", "response must not reveal which check failed")
}

func TestAPIKeyAuth_RateLimited(t *testing.T) {
	authorizer := &stubAuthorizer{decision: services.Decision{
		Allowed: false,
		Reason:  services.DenyRateLimited,
		Message: "rate limit exceeded",
	}}
	app := drift.New()

	app.Use(APIKeyAuth(authorizer, models.EndpointBookings))
	app.Post("/bookings", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
	req.Header.Set("X-API-Key", strings.Repeat("ab", 32))
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestAPIKeyAuth_AllowedSetsCredential(t *testing.T) {
	credID := uuid.New()
	authorizer := &stubAuthorizer{decision: services.Decision{
		Allowed:    true,
		Credential: &models.APICredential{ID: credID},
	}}
	app := drift.New()

	var seenID uuid.UUID
	app.Use(APIKeyAuth(authorizer, models.EndpointBookings))
	app.Post("/bookings", func(c *drift.Context) {
		seenID = GetCredentialID(c)
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	rawKey := strings.Repeat("ab", 32)
	req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
	req.Header.Set("X-API-Key", rawKey)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, credID, seenID)
	assert.Equal(t, rawKey, authorizer.gotKey)
	assert.Equal(t, "https://example.com", authorizer.gotOrigin)
	assert.Equal(t, models.EndpointBookings, authorizer.gotEndpoint)
}

func TestAPIKeyAuth_BearerHeaderFallback(t *testing.T) {
	authorizer := &stubAuthorizer{decision: services.Decision{
		Allowed:    true,
		Credential: &models.APICredential{ID: uuid.New()},
	}}
	app := drift.New()

	app.Use(APIKeyAuth(authorizer, models.EndpointBookings))
	app.Post("/bookings", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	rawKey := strings.Repeat("cd", 32)
	req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+rawKey)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, rawKey, authorizer.gotKey)
}
