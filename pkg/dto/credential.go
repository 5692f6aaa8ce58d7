package dto

import (
	"github.com/google/uuid"
)

type RateLimitRule struct {
	WindowMs    int64  `json:"window_ms"`
	MaxRequests int    `json:"max_requests"`
	Message     string `json:"message,omitempty"`
}

type RateLimitConfig struct {
	Global    RateLimitRule            `json:"global"`
	Endpoints map[string]RateLimitRule `json:"endpoints,omitempty"`
}

type IssueCredentialRequest struct {
	Name                    string           `json:"name"`
	DomainWhitelist         []string         `json:"domain_whitelist"`
	AllowWildcardSubdomains bool             `json:"allow_wildcard_subdomains"`
	RateLimits              *RateLimitConfig `json:"rate_limits,omitempty"`
	Notes                   string           `json:"notes,omitempty"`
}

type CredentialResponse struct {
	ID                      uuid.UUID  `json:"id"`
	Name                    string     `json:"name"`
	KeyPrefix               string     `json:"key_prefix"`
	DomainWhitelist         []string   `json:"domain_whitelist"`
	AllowWildcardSubdomains bool       `json:"allow_wildcard_subdomains"`
	IsActive                bool       `json:"is_active"`
	TotalRequests           int64      `json:"total_requests"`
	Tags                    []string   `json:"tags"`
	RotatedFrom             *uuid.UUID `json:"rotated_from,omitempty"`
	ExpiresAt               *string    `json:"expires_at,omitempty"`
	LastUsedAt              *string    `json:"last_used_at,omitempty"`
	CreatedAt               string     `json:"created_at"`
}

// CredentialIssuedResponse carries the raw key. It is returned exactly
// once, at issuance or rotation; the key is unrecoverable afterwards.
type CredentialIssuedResponse struct {
	CredentialResponse
	Key string `json:"key"`
}

type CleanupResponse struct {
	Deleted int64 `json:"deleted"`
}
