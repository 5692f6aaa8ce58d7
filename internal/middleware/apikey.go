package middleware

import (
	"context"
	"strings"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/models"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const CredentialIDKey = "api_credential_id"

// AuthorizerInterface defines the methods needed by the API key middleware
type AuthorizerInterface interface {
	Authorize(ctx context.Context, rawKey, origin string, endpoint models.Endpoint) services.Decision
}

// APIKeyAuth authenticates requests with an API key, supplied via X-API-Key
// or an Authorization bearer header, against the given endpoint. Every
// authentication failure answers with the same generic denial; only rate
// limiting is distinguishable (429 vs 401).
func APIKeyAuth(authorizer AuthorizerInterface, endpoint models.Endpoint) drift.HandlerFunc {
	return func(c *drift.Context) {
		rawKey := extractKey(c)
		if rawKey == "" {
			c.Unauthorized("missing api key")
			return
		}

		decision := authorizer.Authorize(context.Background(), rawKey, c.GetHeader("Origin"), endpoint)
		if !decision.Allowed {
			if decision.Reason == services.DenyRateLimited {
				_ = c.JSON(429, map[string]string{"error": decision.Message})
				return
			}
			c.Unauthorized(decision.Message)
			return
		}

		c.Set(CredentialIDKey, decision.Credential.ID)
		c.Next()
	}
}

func extractKey(c *drift.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

// GetCredentialID retrieves the authenticated credential's ID from context.
func GetCredentialID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(CredentialIDKey); ok {
		if cid, ok := id.(uuid.UUID); ok {
			return cid
		}
	}
	return uuid.Nil
}
