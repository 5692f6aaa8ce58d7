package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	JWTSecret       string
	JWTAccessExpiry time.Duration

	// Key material for the crypto keyring. Deliberately not validated here:
	// a missing ENCRYPTION_KEY surfaces as a configuration error on the
	// first crypto call, so the server can still boot far enough to report it.
	EncryptionKey  string
	EncryptionSalt string

	KeyRotationDays     int
	KeyRetentionDays    int
	MaxWhitelistDomains int

	RateLimitWindow      time.Duration
	RateLimitMaxRequests int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	accessExpiry, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	rateLimitWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "15m"))
	if err != nil {
		rateLimitWindow = 15 * time.Minute
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret:       getEnvOrPanic("JWT_SECRET"),
		JWTAccessExpiry: accessExpiry,

		EncryptionKey:  getEnv("ENCRYPTION_KEY", ""),
		EncryptionSalt: getEnv("ENCRYPTION_SALT", ""),

		KeyRotationDays:     getEnvInt("KEY_ROTATION_DAYS", 90),
		KeyRetentionDays:    getEnvInt("KEY_RETENTION_DAYS", 30),
		MaxWhitelistDomains: getEnvInt("MAX_WHITELIST_DOMAINS", 10),

		RateLimitWindow:      rateLimitWindow,
		RateLimitMaxRequests: getEnvInt("RATE_LIMIT_MAX_REQUESTS", 1000),
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
