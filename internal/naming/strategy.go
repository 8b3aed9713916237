package naming

import (
	"fmt"
	"strings"
)

// Strategy selects how job names are made unique.
type Strategy string

const (
	// SuffixStrategy appends the smallest free "-N" suffix.
	SuffixStrategy Strategy = "suffix"
	// TimestampStrategy appends the submission time.
	TimestampStrategy Strategy = "timestamp"
)

// NewUniquifier builds the Uniquifier for the named strategy. An empty strategy means suffix.
func NewUniquifier(strategy Strategy, finder NameFinder) (Uniquifier, error) {
	switch Strategy(strings.ToLower(string(strategy))) {
	case SuffixStrategy, "":
		if finder == nil {
			return nil, fmt.Errorf("%w: suffix strategy requires a name finder", ErrInvalidArgument)
		}
		return NewEnsurer(finder), nil
	case TimestampStrategy:
		return NewTimestampEnsurer(nil), nil
	default:
		return nil, fmt.Errorf("%w: unknown naming strategy %q", ErrInvalidArgument, strategy)
	}
}
