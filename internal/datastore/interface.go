package datastore

import (
	"context"
	"fmt"

	"metadactyl/internal/entities"
	"metadactyl/internal/mockstore"
	"metadactyl/internal/naming"
	"metadactyl/internal/store"
)

// DataStore defines the interface for all data access operations
// This interface is implemented by both the SQL store and the JSON-backed mock store
type DataStore interface {
	// Lifecycle
	Close() error
	InitDB(ctx context.Context) error

	// Job Operations
	SaveJob(ctx context.Context, job *entities.Job) error
	DeleteJob(ctx context.Context, job *entities.Job) error
	DeleteJobByID(ctx context.Context, id string) error
	FindJobByID(ctx context.Context, id string) (*entities.Job, error)
	FindAllJobs(ctx context.Context) ([]entities.Job, error)
	FindJobNamesByOwnerAndPrefix(ctx context.Context, owner, prefix string) ([]string, error)

	// User Operations
	SaveUser(ctx context.Context, user *entities.User) error
	FindUserByUsername(ctx context.Context, username string) (*entities.User, error)
	FindAllUsers(ctx context.Context) ([]entities.User, error)

	// Workspace Operations
	SaveWorkspace(ctx context.Context, ws *entities.Workspace) error
	FindWorkspaceByUserID(ctx context.Context, userID string) (*entities.Workspace, error)
	FindAllWorkspaces(ctx context.Context) ([]entities.Workspace, error)

	// Reference Genome Operations
	SaveReferenceGenome(ctx context.Context, g *entities.ReferenceGenome) error
	FindReferenceGenomeByID(ctx context.Context, id string) (*entities.ReferenceGenome, error)
	FindAllReferenceGenomes(ctx context.Context) ([]entities.ReferenceGenome, error)
}

var (
	_ DataStore = (*store.Store)(nil)
	_ DataStore = (*mockstore.Store)(nil)
)

// Type represents the type of data store to use
type Type string

const (
	// PostgreSQLStore uses a PostgreSQL database
	PostgreSQLStore Type = "postgresql"
	// SQLiteStore uses a local SQLite file
	SQLiteStore Type = "sqlite"
	// MockStore uses JSON mock data
	MockStore Type = "mock"
)

// Config holds configuration for data store creation
type Config struct {
	Type             Type
	ConnectionString string
	// PostgresDriver is the database/sql driver for PostgreSQL: "postgres" (lib/pq, default) or "pgx".
	PostgresDriver   string
	SQLitePath       string
	MockDataPath     string
	LogQueries       bool
}

// NewDataStore creates a new data store based on configuration
func NewDataStore(ctx context.Context, config Config) (DataStore, error) {
	var opts []store.Option
	if config.LogQueries {
		opts = append(opts, store.WithQueryLogging())
	}

	switch config.Type {
	case PostgreSQLStore:
		driver := config.PostgresDriver
		if driver == "" {
			driver = store.DriverPostgres
		}
		s, err := store.Open(ctx, driver, config.ConnectionString, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case SQLiteStore:
		// SQLite allows one writer at a time.
		opts = append(opts, store.WithMaxConnections(1))
		s, err := store.Open(ctx, store.DriverSQLite, config.SQLitePath, opts...)
		if err != nil {
			return nil, err
		}
		if err := s.InitDB(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	case MockStore:
		s, err := mockstore.Load(config.MockDataPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load mock data: %w", err)
		}
		return s, nil
	default:
		return nil, &UnsupportedStoreTypeError{Type: string(config.Type)}
	}
}

// UnsupportedStoreTypeError is returned when an unsupported store type is requested
type UnsupportedStoreTypeError struct {
	Type string
}

func (e *UnsupportedStoreTypeError) Error() string {
	return "unsupported store type: " + e.Type
}

// NameFinder exposes the store's job-name lookup to the naming package.
func NameFinder(ds DataStore) naming.NameFinder {
	return naming.FinderFunc(ds.FindJobNamesByOwnerAndPrefix)
}
