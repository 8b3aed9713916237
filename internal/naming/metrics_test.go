package naming

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedFinder_CountsResults(t *testing.T) {
	known := NewKnownNames()
	known.Add("alice", "job")

	reg := prometheus.NewRegistry()
	finder, err := NewInstrumentedFinder(known, reg)
	require.NoError(t, err)

	e := NewEnsurer(finder)
	ctx := context.Background()

	_, err = e.EnsureUniqueName(ctx, "alice", "job")
	require.NoError(t, err)
	_, err = e.EnsureUniqueName(ctx, "alice", "other")
	require.NoError(t, err)
	_, err = e.EnsureUniqueName(ctx, "bob", "job")
	require.NoError(t, err)

	assert.Equal(t, 2, testutil.CollectAndCount(finder.lookups, "metadactyl_name_lookups_total"))
	assert.Equal(t, 1.0, testutil.ToFloat64(finder.lookups.WithLabelValues("matched")))
	assert.Equal(t, 2.0, testutil.ToFloat64(finder.lookups.WithLabelValues("empty")))
	assert.Equal(t, 1, testutil.CollectAndCount(finder.duration))
}

func TestInstrumentedFinder_CountsErrors(t *testing.T) {
	finder, err := NewInstrumentedFinder(FinderFunc(func(context.Context, string, string) ([]string, error) {
		return nil, errors.New("boom")
	}), nil)
	require.NoError(t, err)

	_, err = NewEnsurer(finder).EnsureUniqueName(context.Background(), "alice", "job")
	var lookupErr *LookupError
	assert.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, 1.0, testutil.ToFloat64(finder.lookups.WithLabelValues("error")))
}

func TestInstrumentedFinder_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewInstrumentedFinder(NewKnownNames(), reg)
	require.NoError(t, err)

	_, err = NewInstrumentedFinder(NewKnownNames(), reg)
	assert.Error(t, err)
}
