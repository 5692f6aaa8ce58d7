package services

import (
	"context"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/models"
	"go.uber.org/zap"
)

// DenyReason is the internal reason a request was denied. Reasons are
// logged server-side only; callers see one generic denial so probing
// cannot learn which check failed.
type DenyReason string

const (
	DenyInvalidKeyFormat     DenyReason = "invalid_key_format"
	DenyUnknownKey           DenyReason = "unknown_key"
	DenyKeyMismatch          DenyReason = "key_mismatch"
	DenyDomainNotWhitelisted DenyReason = "domain_not_whitelisted"
	DenyRateLimited          DenyReason = "rate_limit_exceeded"
)

// genericDenialMessage is the single message surfaced for every
// authentication failure.
const genericDenialMessage = "invalid or unauthorized api key"

// Decision is the outcome of authorizing one inbound request.
type Decision struct {
	Allowed    bool
	Reason     DenyReason
	Message    string
	Credential *models.APICredential
}

func deny(reason DenyReason, message string) Decision {
	return Decision{Reason: reason, Message: message}
}

// Authorize runs the full validation pipeline for an inbound request:
// format check, prefix lookup, hash comparison, domain whitelist, rate
// limit, then the usage increment. Checks are ordered cheapest-first so
// invalid-key probing stays inexpensive. Rate-limited requests do not
// count toward usage.
func (s *CredentialService) Authorize(ctx context.Context, rawKey, origin string, endpoint models.Endpoint) Decision {
	if len(rawKey) != RawKeyLength {
		s.log.Warn("api key denied",
			zap.String("reason", string(DenyInvalidKeyFormat)))
		return deny(DenyInvalidKeyFormat, genericDenialMessage)
	}

	cred, err := s.FindByPrefix(ctx, rawKey[:KeyPrefixLength])
	if err != nil {
		s.log.Warn("api key denied",
			zap.String("reason", string(DenyUnknownKey)),
			zap.String("key_prefix", rawKey[:KeyPrefixLength]))
		return deny(DenyUnknownKey, genericDenialMessage)
	}

	if !s.ValidateKey(cred, rawKey) {
		s.log.Warn("api key denied",
			zap.String("reason", string(DenyKeyMismatch)),
			zap.String("credential_id", cred.ID.String()))
		return deny(DenyKeyMismatch, genericDenialMessage)
	}

	if !s.ValidateDomain(cred, origin) {
		s.log.Warn("api key denied",
			zap.String("reason", string(DenyDomainNotWhitelisted)),
			zap.String("credential_id", cred.ID.String()),
			zap.String("origin", origin))
		return deny(DenyDomainNotWhitelisted, genericDenialMessage)
	}

	rule := cred.RateLimits.RuleFor(endpoint)
	if !s.limiter.Allow(cred.ID, endpoint, rule) {
		s.log.Warn("api key rate limited",
			zap.String("credential_id", cred.ID.String()),
			zap.String("endpoint", string(endpoint)))
		message := rule.Message
		if message == "" {
			message = "rate limit exceeded"
		}
		return deny(DenyRateLimited, message)
	}

	// Counter loss here must not fail the request; usage numbers are
	// approximate by contract.
	if err := s.IncrementUsage(ctx, cred, endpoint); err != nil {
		s.log.Error("failed to record api key usage",
			zap.String("credential_id", cred.ID.String()),
			zap.Error(err))
	}

	return Decision{Allowed: true, Credential: cred}
}
