package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/config"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/cryptoutil"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/database"
	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrWhitelistTooLarge  = errors.New("domain whitelist exceeds maximum size")
)

const (
	// keyByteLength bytes of randomness per raw key; the hex encoding makes
	// every raw key exactly 64 characters.
	keyByteLength = 32
	// KeyPrefixLength is the plaintext lookup fragment stored alongside the
	// hash. Fixed length so the prefix check runs before any hashing.
	KeyPrefixLength = 8
	// RawKeyLength is the length of every issued raw key.
	RawKeyLength = 2 * keyByteLength

	// usageResetWindow is the rolling reset period for usage counters,
	// measured from last_reset_at rather than calendar boundaries.
	usageResetWindow = 30 * 24 * time.Hour
)

const credentialColumns = `id, name, key_hash, key_prefix, domain_whitelist, allow_wildcard_subdomains,
		rate_limits, is_active, expires_at, last_used_at, rotated_from, rotated_at,
		total_requests, endpoint_usage, last_reset_at, created_by, notes, tags, created_at, updated_at`

type CredentialService struct {
	db      *database.DB
	log     *zap.Logger
	limiter *RateLimiter

	hashSalt            string
	rotationPeriod      time.Duration
	retentionPeriod     time.Duration
	maxWhitelistDomains int
	defaultRateLimits   models.RateLimitConfig
}

func NewCredentialService(db *database.DB, cfg *config.Config, log *zap.Logger) *CredentialService {
	return &CredentialService{
		db:                  db,
		log:                 log,
		limiter:             NewRateLimiter(),
		hashSalt:            cfg.EncryptionSalt,
		rotationPeriod:      time.Duration(cfg.KeyRotationDays) * 24 * time.Hour,
		retentionPeriod:     time.Duration(cfg.KeyRetentionDays) * 24 * time.Hour,
		maxWhitelistDomains: cfg.MaxWhitelistDomains,
		defaultRateLimits: models.RateLimitConfig{
			Global: models.RateLimitRule{
				WindowMs:    cfg.RateLimitWindow.Milliseconds(),
				MaxRequests: cfg.RateLimitMaxRequests,
				Message:     "rate limit exceeded, please slow down",
			},
		},
	}
}

// IssueParams describes the credential to be issued.
type IssueParams struct {
	Name                    string
	DomainWhitelist         []string
	AllowWildcardSubdomains bool
	RateLimits              *models.RateLimitConfig
	Notes                   string
}

// Issue creates a new credential. The returned raw key is shown exactly
// once; only its hash and prefix are persisted.
func (s *CredentialService) Issue(ctx context.Context, params IssueParams, createdBy string) (*models.APICredential, string, error) {
	if len(params.DomainWhitelist) > s.maxWhitelistDomains {
		return nil, "", ErrWhitelistTooLarge
	}

	rawKey := cryptoutil.GenerateSecureToken(keyByteLength)

	limits := s.defaultRateLimits
	if params.RateLimits != nil {
		limits = *params.RateLimits
	}

	now := time.Now()
	expiresAt := now.Add(s.rotationPeriod)

	cred := &models.APICredential{
		Name:                    params.Name,
		KeyHash:                 cryptoutil.Hash(rawKey, s.hashSalt),
		KeyPrefix:               rawKey[:KeyPrefixLength],
		DomainWhitelist:         params.DomainWhitelist,
		AllowWildcardSubdomains: params.AllowWildcardSubdomains,
		RateLimits:              limits,
		IsActive:                true,
		ExpiresAt:               &expiresAt,
		EndpointUsage:           map[models.Endpoint]int64{},
		CreatedBy:               createdBy,
		Notes:                   params.Notes,
		Tags:                    []string{},
	}

	if err := s.insert(ctx, cred); err != nil {
		return nil, "", err
	}
	return cred, rawKey, nil
}

func (s *CredentialService) insert(ctx context.Context, cred *models.APICredential) error {
	limitsJSON, err := json.Marshal(cred.RateLimits)
	if err != nil {
		return fmt.Errorf("failed to encode rate limits: %w", err)
	}
	usageJSON, err := json.Marshal(cred.EndpointUsage)
	if err != nil {
		return fmt.Errorf("failed to encode endpoint usage: %w", err)
	}

	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO api_credentials (name, key_hash, key_prefix, domain_whitelist, allow_wildcard_subdomains,
			rate_limits, expires_at, rotated_from, created_by, notes, tags, endpoint_usage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, is_active, total_requests, last_reset_at, created_at, updated_at
	`, cred.Name, cred.KeyHash, cred.KeyPrefix, cred.DomainWhitelist, cred.AllowWildcardSubdomains,
		limitsJSON, cred.ExpiresAt, cred.RotatedFrom, cred.CreatedBy, cred.Notes, cred.Tags, usageJSON,
	).Scan(&cred.ID, &cred.IsActive, &cred.TotalRequests, &cred.LastResetAt, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert credential: %w", err)
	}
	return nil
}

// ValidateKey checks a supplied raw key against the stored hash. The cheap
// prefix comparison runs first so invalid-key probing never reaches the
// hash step.
func (s *CredentialService) ValidateKey(cred *models.APICredential, suppliedKey string) bool {
	if len(suppliedKey) < KeyPrefixLength || !strings.HasPrefix(suppliedKey, cred.KeyPrefix) {
		return false
	}
	return cryptoutil.TimingSafeCompare(cryptoutil.Hash(suppliedKey, s.hashSalt), cred.KeyHash)
}

// ValidateDomain checks an origin against the credential's whitelist.
// Inactive or expired credentials always fail. Entries are normalized
// (scheme and trailing slash stripped, lowercased); a "*." entry matches
// the base domain and any subdomain when wildcarding is enabled. No
// substring matching.
func (s *CredentialService) ValidateDomain(cred *models.APICredential, origin string) bool {
	if !cred.IsActive || cred.IsExpired(time.Now()) {
		return false
	}

	domain := normalizeDomain(origin)
	if domain == "" {
		return false
	}

	for _, entry := range cred.DomainWhitelist {
		allowed := normalizeDomain(entry)
		if base, ok := strings.CutPrefix(allowed, "*."); ok && cred.AllowWildcardSubdomains {
			if domain == base || strings.HasSuffix(domain, "."+base) {
				return true
			}
			continue
		}
		if domain == allowed {
			return true
		}
	}
	return false
}

func normalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	if _, rest, ok := strings.Cut(d, "://"); ok {
		d = rest
	}
	return strings.TrimSuffix(d, "/")
}

// IncrementUsage bumps the request counters in a single atomic UPDATE so
// concurrent requests cannot lose increments. The 30-day rolling reset
// happens in-query: once last_reset_at is stale the counters restart at 1,
// counting the current call. Unknown endpoint identifiers bump the total
// only; they are never stored in the endpoint map.
func (s *CredentialService) IncrementUsage(ctx context.Context, cred *models.APICredential, endpoint models.Endpoint) error {
	now := time.Now()
	resetBefore := now.Add(-usageResetWindow)

	var (
		usageJSON []byte
		err       error
	)

	if models.KnownEndpoint(endpoint) {
		freshUsage, marshalErr := json.Marshal(map[models.Endpoint]int64{endpoint: 1})
		if marshalErr != nil {
			return marshalErr
		}
		err = s.db.Pool.QueryRow(ctx, `
			UPDATE api_credentials SET
				total_requests = CASE WHEN last_reset_at <= $2 THEN 1 ELSE total_requests + 1 END,
				endpoint_usage = CASE WHEN last_reset_at <= $2 THEN $3::jsonb
					ELSE jsonb_set(endpoint_usage, $4, (COALESCE(endpoint_usage #>> $4, '0')::bigint + 1)::text::jsonb) END,
				last_reset_at = CASE WHEN last_reset_at <= $2 THEN $5 ELSE last_reset_at END,
				last_used_at = $5,
				updated_at = $5
			WHERE id = $1
			RETURNING total_requests, endpoint_usage, last_reset_at
		`, cred.ID, resetBefore, freshUsage, []string{string(endpoint)}, now,
		).Scan(&cred.TotalRequests, &usageJSON, &cred.LastResetAt)
	} else {
		err = s.db.Pool.QueryRow(ctx, `
			UPDATE api_credentials SET
				total_requests = CASE WHEN last_reset_at <= $2 THEN 1 ELSE total_requests + 1 END,
				endpoint_usage = CASE WHEN last_reset_at <= $2 THEN '{}'::jsonb ELSE endpoint_usage END,
				last_reset_at = CASE WHEN last_reset_at <= $2 THEN $3 ELSE last_reset_at END,
				last_used_at = $3,
				updated_at = $3
			WHERE id = $1
			RETURNING total_requests, endpoint_usage, last_reset_at
		`, cred.ID, resetBefore, now,
		).Scan(&cred.TotalRequests, &usageJSON, &cred.LastResetAt)
	}
	if err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}

	if err := json.Unmarshal(usageJSON, &cred.EndpointUsage); err != nil {
		return fmt.Errorf("failed to decode endpoint usage: %w", err)
	}
	cred.LastUsedAt = &now
	return nil
}

// Rotate issues a replacement credential and deactivates the old one. The
// replacement copies the whitelist, rate limits, and tags (plus a "rotated"
// tag) and keeps an audit back-reference; the old record is retained until
// the retention cleanup purges it.
func (s *CredentialService) Rotate(ctx context.Context, cred *models.APICredential, createdBy string) (*models.APICredential, string, error) {
	rawKey := cryptoutil.GenerateSecureToken(keyByteLength)
	now := time.Now()
	expiresAt := now.Add(s.rotationPeriod)

	successor := &models.APICredential{
		Name:                    cred.Name,
		KeyHash:                 cryptoutil.Hash(rawKey, s.hashSalt),
		KeyPrefix:               rawKey[:KeyPrefixLength],
		DomainWhitelist:         append([]string{}, cred.DomainWhitelist...),
		AllowWildcardSubdomains: cred.AllowWildcardSubdomains,
		RateLimits:              cred.RateLimits,
		IsActive:                true,
		ExpiresAt:               &expiresAt,
		RotatedFrom:             &cred.ID,
		EndpointUsage:           map[models.Endpoint]int64{},
		CreatedBy:               createdBy,
		Tags:                    append(append([]string{}, cred.Tags...), "rotated"),
	}

	if err := s.insert(ctx, successor); err != nil {
		return nil, "", err
	}

	result, err := s.db.Pool.Exec(ctx, `
		UPDATE api_credentials
		SET is_active = FALSE, rotated_at = $2, updated_at = $2
		WHERE id = $1
	`, cred.ID, now)
	if err != nil {
		return nil, "", fmt.Errorf("failed to deactivate rotated credential: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, "", ErrCredentialNotFound
	}

	cred.IsActive = false
	cred.RotatedAt = &now
	cred.UpdatedAt = now

	return successor, rawKey, nil
}

// CleanupExpired purges credentials that are both inactive and past the
// retention cutoff measured from expires_at. Active credentials are never
// deleted here, even when technically expired: expiry of an active key is a
// read-time fact, and the record stays for audit until rotation or manual
// deactivation retires it.
func (s *CredentialService) CleanupExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.retentionPeriod)
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM api_credentials
		WHERE is_active = FALSE AND expires_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup credentials: %w", err)
	}
	return result.RowsAffected(), nil
}

// FindByPrefix looks up the active, non-expired credential for a key prefix.
func (s *CredentialService) FindByPrefix(ctx context.Context, prefix string) (*models.APICredential, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+credentialColumns+`
		FROM api_credentials
		WHERE key_prefix = $1 AND is_active = TRUE AND (expires_at IS NULL OR expires_at > NOW())
	`, prefix)
	return scanCredential(row)
}

// GetByID returns a credential regardless of state.
func (s *CredentialService) GetByID(ctx context.Context, id uuid.UUID) (*models.APICredential, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+credentialColumns+`
		FROM api_credentials
		WHERE id = $1
	`, id)
	return scanCredential(row)
}

// FindActive lists all active, non-expired credentials.
func (s *CredentialService) FindActive(ctx context.Context) ([]models.APICredential, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+credentialColumns+`
		FROM api_credentials
		WHERE is_active = TRUE AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []models.APICredential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, *cred)
	}
	return creds, rows.Err()
}

// Deactivate retires a credential without deleting it; cleanup removes the
// record once past retention.
func (s *CredentialService) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE api_credentials
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
	`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*models.APICredential, error) {
	var (
		cred       models.APICredential
		limitsJSON []byte
		usageJSON  []byte
	)
	err := row.Scan(
		&cred.ID, &cred.Name, &cred.KeyHash, &cred.KeyPrefix, &cred.DomainWhitelist,
		&cred.AllowWildcardSubdomains, &limitsJSON, &cred.IsActive, &cred.ExpiresAt,
		&cred.LastUsedAt, &cred.RotatedFrom, &cred.RotatedAt, &cred.TotalRequests,
		&usageJSON, &cred.LastResetAt, &cred.CreatedBy, &cred.Notes, &cred.Tags,
		&cred.CreatedAt, &cred.UpdatedAt,
	)
	if err != nil {
		return nil, ErrCredentialNotFound
	}

	if err := json.Unmarshal(limitsJSON, &cred.RateLimits); err != nil {
		return nil, fmt.Errorf("failed to decode rate limits: %w", err)
	}
	if err := json.Unmarshal(usageJSON, &cred.EndpointUsage); err != nil {
		return nil, fmt.Errorf("failed to decode endpoint usage: %w", err)
	}
	return &cred, nil
}
