package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS api_credentials (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		key_hash VARCHAR(64) UNIQUE NOT NULL,
		key_prefix VARCHAR(8) NOT NULL,
		domain_whitelist TEXT[] NOT NULL DEFAULT '{}',
		allow_wildcard_subdomains BOOLEAN NOT NULL DEFAULT FALSE,
		rate_limits JSONB NOT NULL DEFAULT '{}',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		expires_at TIMESTAMP WITH TIME ZONE,
		last_used_at TIMESTAMP WITH TIME ZONE,
		rotated_from UUID REFERENCES api_credentials(id) ON DELETE SET NULL,
		rotated_at TIMESTAMP WITH TIME ZONE,
		total_requests BIGINT NOT NULL DEFAULT 0,
		endpoint_usage JSONB NOT NULL DEFAULT '{}',
		last_reset_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		created_by VARCHAR(255) NOT NULL,
		notes TEXT,
		tags TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_api_credentials_key_prefix ON api_credentials(key_prefix)`,
	`CREATE INDEX IF NOT EXISTS idx_api_credentials_is_active ON api_credentials(is_active)`,
	`CREATE INDEX IF NOT EXISTS idx_api_credentials_expires_at ON api_credentials(expires_at)`,

	`CREATE TABLE IF NOT EXISTS guest_bookings (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		reference_number VARCHAR(8) UNIQUE NOT NULL,
		guest_name VARCHAR(255) NOT NULL,
		guest_email TEXT NOT NULL,
		created_via UUID REFERENCES api_credentials(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_guest_bookings_reference_number ON guest_bookings(reference_number)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
