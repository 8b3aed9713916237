package naming

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Common errors
var (
	ErrInvalidArgument = errors.New("invalid argument")
)

// LookupError is returned when the existing names for an owner could not be fetched.
type LookupError struct {
	Owner  string
	Prefix string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("failed to look up names for %s with prefix %q: %v", e.Owner, e.Prefix, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// NameFinder supplies the names already in use by an owner.
type NameFinder interface {
	// FindNamesByOwnerAndPrefix returns every name owned by owner that starts with prefix.
	FindNamesByOwnerAndPrefix(ctx context.Context, owner, prefix string) ([]string, error)
}

// FinderFunc adapts an ordinary function to the NameFinder interface.
type FinderFunc func(ctx context.Context, owner, prefix string) ([]string, error)

func (f FinderFunc) FindNamesByOwnerAndPrefix(ctx context.Context, owner, prefix string) ([]string, error) {
	return f(ctx, owner, prefix)
}

// Uniquifier produces a name that does not collide with any name the owner already uses.
type Uniquifier interface {
	EnsureUniqueName(ctx context.Context, owner, candidate string) (string, error)
}

// Ensurer disambiguates names by appending the smallest free "-N" suffix.
type Ensurer struct {
	finder NameFinder
}

// NewEnsurer creates an Ensurer backed by the given finder.
func NewEnsurer(finder NameFinder) *Ensurer {
	return &Ensurer{finder: finder}
}

// EnsureUniqueName returns candidate unchanged if the owner does not already use it.
// Otherwise it returns candidate-N for the smallest N >= 1 that is not in use.
//
// The finder is always queried, even when no name with the prefix exists. Two
// concurrent calls for the same owner and candidate can return the same name; the
// store's unique constraint is the final guard.
func (e *Ensurer) EnsureUniqueName(ctx context.Context, owner, candidate string) (string, error) {
	if owner == "" {
		return "", fmt.Errorf("%w: owner must not be empty", ErrInvalidArgument)
	}
	if candidate == "" {
		return "", fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
	}

	matches, err := e.finder.FindNamesByOwnerAndPrefix(ctx, owner, candidate)
	if err != nil {
		return "", &LookupError{Owner: owner, Prefix: candidate, Err: err}
	}

	taken := make(map[string]struct{}, len(matches))
	for _, name := range matches {
		taken[name] = struct{}{}
	}
	if _, ok := taken[candidate]; !ok {
		return candidate, nil
	}
	return nextFreeName(taken, candidate), nil
}

// nextFreeName scans upward from 1 so that gaps left by deleted names are reused.
func nextFreeName(taken map[string]struct{}, candidate string) string {
	for i := 1; ; i++ {
		name := candidate + "-" + strconv.Itoa(i)
		if _, ok := taken[name]; !ok {
			return name
		}
	}
}
