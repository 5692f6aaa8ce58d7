package middleware

import (
	"strings"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	AdminIDKey    = "admin_id"
	AdminEmailKey = "admin_email"
)

// AdminAuth guards the credential management endpoints with admin JWTs.
func AdminAuth(jwtService *services.JWTService) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Unauthorized("invalid authorization header format")
			return
		}

		claims, err := jwtService.ValidateAccessToken(parts[1])
		if err != nil {
			c.Unauthorized("invalid or expired token")
			return
		}

		c.Set(AdminIDKey, claims.AdminID)
		c.Set(AdminEmailKey, claims.Email)

		c.Next()
	}
}

func GetAdminID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(AdminIDKey); ok {
		if aid, ok := id.(uuid.UUID); ok {
			return aid
		}
	}
	return uuid.Nil
}

func GetAdminEmail(c *drift.Context) string {
	if email, ok := c.Get(AdminEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}
