package services

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/cryptoutil"
	"go.uber.org/zap"
)

var ErrAllocationExhausted = errors.New("reference number allocation attempts exhausted")

// referencePattern is the published contract for booking references. It is
// checked at generation time and again whenever a reference arrives from
// external input.
var referencePattern = regexp.MustCompile(`^W[A-Z0-9]{7}$`)

// ValidReference reports whether code is a well-formed booking reference.
func ValidReference(code string) bool {
	return referencePattern.MatchString(code)
}

// DelayStrategy controls the pause between allocation retries. Injected so
// tests run with zero delay instead of branching on an environment name.
type DelayStrategy func(attempt int)

// NoDelay retries immediately.
func NoDelay(int) {}

// DefaultDelay sleeps briefly between retries to diversify entropy under a
// collision storm.
func DefaultDelay(attempt int) {
	time.Sleep(time.Duration(attempt) * 5 * time.Millisecond)
}

const defaultMaxAttempts = 30

// ReferenceService allocates globally-unique public booking references.
// Uniqueness is ultimately guaranteed by the database constraint on
// reference_number; the retry loop recovers from collision races, it does
// not replace the constraint.
type ReferenceService struct {
	log         *zap.Logger
	maxAttempts int
	delay       DelayStrategy
}

func NewReferenceService(log *zap.Logger, maxAttempts int, delay DelayStrategy) *ReferenceService {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if delay == nil {
		delay = DefaultDelay
	}
	return &ReferenceService{log: log, maxAttempts: maxAttempts, delay: delay}
}

// Generate produces one candidate reference.
func (s *ReferenceService) Generate() string {
	return cryptoutil.GenerateReferenceNumber()
}

// GenerateUnique draws candidates until the injected existence check backed
// by storage reports a free one. Exhausting the attempt budget is a fatal
// allocation failure and always propagates.
func (s *ReferenceService) GenerateUnique(ctx context.Context, exists func(ctx context.Context, code string) (bool, error)) (string, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code := s.Generate()
		if !ValidReference(code) {
			continue
		}

		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}

		s.log.Debug("reference collision, retrying",
			zap.String("code", code),
			zap.Int("attempt", attempt))
		s.delay(attempt)
	}

	s.log.Error("reference allocation exhausted",
		zap.Int("attempts", s.maxAttempts))
	return "", ErrAllocationExhausted
}
