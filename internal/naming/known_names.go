package naming

import (
	"context"
	"strings"
	"sync"
)

// KnownNames is an in-memory NameFinder keyed by owner.
type KnownNames struct {
	mu    sync.RWMutex
	names map[string][]string
}

// NewKnownNames creates an empty KnownNames.
func NewKnownNames() *KnownNames {
	return &KnownNames{names: make(map[string][]string)}
}

// Add records a name as used by owner.
func (k *KnownNames) Add(owner, name string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.names[owner] = append(k.names[owner], name)
}

// AddAll records several names as used by owner.
func (k *KnownNames) AddAll(owner string, names []string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.names[owner] = append(k.names[owner], names...)
}

func (k *KnownNames) FindNamesByOwnerAndPrefix(_ context.Context, owner, prefix string) ([]string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	var matches []string
	for _, name := range k.names[owner] {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	return matches, nil
}
