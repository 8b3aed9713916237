package naming

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is appended to job names by TimestampEnsurer.
const TimestampLayout = "-2006-01-02-15-04-05.000"

// TimestampEnsurer relies on the submission time instead of the names already in use.
// It never queries a store.
type TimestampEnsurer struct {
	now func() time.Time
}

// NewTimestampEnsurer creates a TimestampEnsurer. A nil clock means time.Now.
func NewTimestampEnsurer(now func() time.Time) *TimestampEnsurer {
	if now == nil {
		now = time.Now
	}
	return &TimestampEnsurer{now: now}
}

// EnsureUniqueName replaces spaces with underscores and appends the current UTC time.
func (e *TimestampEnsurer) EnsureUniqueName(_ context.Context, owner, candidate string) (string, error) {
	if owner == "" {
		return "", fmt.Errorf("%w: owner must not be empty", ErrInvalidArgument)
	}
	if candidate == "" {
		return "", fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
	}
	return strings.ReplaceAll(candidate, " ", "_") + e.now().UTC().Format(TimestampLayout), nil
}
