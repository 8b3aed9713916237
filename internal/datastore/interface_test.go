package datastore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metadactyl/internal/entities"
	"metadactyl/internal/naming"
)

func TestNewDataStore_Unsupported(t *testing.T) {
	_, err := NewDataStore(context.Background(), Config{Type: "oracle"})

	var unsupported *UnsupportedStoreTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "oracle", unsupported.Type)
}

func TestNewDataStore_Mock(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jobs.json"),
		[]byte(`[{"id": "j1", "owner": "alice", "name": "job"}]`), 0o600))

	ds, err := NewDataStore(context.Background(), Config{Type: MockStore, MockDataPath: dir})
	require.NoError(t, err)
	defer ds.Close()

	got, err := naming.NewEnsurer(NameFinder(ds)).EnsureUniqueName(context.Background(), "alice", "job")
	require.NoError(t, err)
	assert.Equal(t, "job-1", got)
}

func TestNewDataStore_SQLite(t *testing.T) {
	ctx := context.Background()
	ds, err := NewDataStore(ctx, Config{Type: SQLiteStore, SQLitePath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	defer ds.Close()

	require.NoError(t, ds.SaveJob(ctx, &entities.Job{Owner: "alice", Name: "job", DisplayName: "job", AnalysisID: "wc", Status: entities.JobSubmitted}))

	got, err := naming.NewEnsurer(NameFinder(ds)).EnsureUniqueName(ctx, "alice", "job")
	require.NoError(t, err)
	assert.Equal(t, "job-1", got)
}
