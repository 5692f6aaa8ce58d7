package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process logger. Production uses JSON output with
// stacktraces disabled; everything else gets the human-readable
// development config.
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.DisableStacktrace = true
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.InitialFields = map[string]interface{}{
		"service": "vale-bookings-api",
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log, nil
}
