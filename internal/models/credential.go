package models

import (
	"time"

	"github.com/google/uuid"
)

// Endpoint identifies a rate-limitable API surface. The set is closed:
// usage counters are only kept for these identifiers, so attacker-supplied
// route strings can never grow the per-credential usage map.
type Endpoint string

const (
	EndpointAvailability Endpoint = "availability"
	EndpointBookings     Endpoint = "bookings"
	EndpointLocations    Endpoint = "locations"
	EndpointSchedules    Endpoint = "schedules"
)

var knownEndpoints = map[Endpoint]struct{}{
	EndpointAvailability: {},
	EndpointBookings:     {},
	EndpointLocations:    {},
	EndpointSchedules:    {},
}

// KnownEndpoint reports whether e belongs to the closed endpoint set.
func KnownEndpoint(e Endpoint) bool {
	_, ok := knownEndpoints[e]
	return ok
}

// RateLimitRule is the configuration for one limit window. Enforcement
// lives in services.RateLimiter; credentials only carry the shape.
type RateLimitRule struct {
	WindowMs    int64  `json:"window_ms"`
	MaxRequests int    `json:"max_requests"`
	Message     string `json:"message,omitempty"`
}

func (r RateLimitRule) Window() time.Duration {
	return time.Duration(r.WindowMs) * time.Millisecond
}

type RateLimitConfig struct {
	Global    RateLimitRule              `json:"global"`
	Endpoints map[Endpoint]RateLimitRule `json:"endpoints,omitempty"`
}

// RuleFor returns the per-endpoint override when one exists, otherwise the
// global rule.
func (c RateLimitConfig) RuleFor(e Endpoint) RateLimitRule {
	if rule, ok := c.Endpoints[e]; ok {
		return rule
	}
	return c.Global
}

// APICredential is a programmatic client's credential. The raw secret is
// never stored; only its hash and a short plaintext prefix used for lookup.
type APICredential struct {
	ID                      uuid.UUID          `json:"id"`
	Name                    string             `json:"name"`
	KeyHash                 string             `json:"-"`
	KeyPrefix               string             `json:"key_prefix"`
	DomainWhitelist         []string           `json:"domain_whitelist"`
	AllowWildcardSubdomains bool               `json:"allow_wildcard_subdomains"`
	RateLimits              RateLimitConfig    `json:"rate_limits"`
	IsActive                bool               `json:"is_active"`
	ExpiresAt               *time.Time         `json:"expires_at,omitempty"`
	LastUsedAt              *time.Time         `json:"last_used_at,omitempty"`
	RotatedFrom             *uuid.UUID         `json:"rotated_from,omitempty"`
	RotatedAt               *time.Time         `json:"rotated_at,omitempty"`
	TotalRequests           int64              `json:"total_requests"`
	EndpointUsage           map[Endpoint]int64 `json:"endpoint_usage"`
	LastResetAt             time.Time          `json:"last_reset_at"`
	CreatedBy               string             `json:"created_by"`
	Notes                   string             `json:"notes,omitempty"`
	Tags                    []string           `json:"tags"`
	CreatedAt               time.Time          `json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
}

// IsExpired reports whether the credential has an expiry in the past.
// Expiry is a derived read-time fact, not a stored state transition.
func (c *APICredential) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// NeedsRotation reports whether the credential has outlived the rotation
// period since creation.
func (c *APICredential) NeedsRotation(now time.Time, rotationPeriod time.Duration) bool {
	return now.Sub(c.CreatedAt) >= rotationPeriod
}
