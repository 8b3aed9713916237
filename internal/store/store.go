package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"metadactyl/internal/entities"
)

// Driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

// Common errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateName     = errors.New("name already used by owner")
	ErrDuplicateUsername = errors.New("username already exists")
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Store is the SQL-backed persistence layer. The same queries run on PostgreSQL and SQLite.
type Store struct {
	db     *sqlx.DB
	config *storeConfig
}

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	logQueries     bool
	maxConnections int
}

// WithQueryLogging logs every statement before it runs.
func WithQueryLogging() Option {
	return func(cfg *storeConfig) {
		cfg.logQueries = true
	}
}

// WithMaxConnections sets the maximum number of open connections.
func WithMaxConnections(maxConns int) Option {
	return func(cfg *storeConfig) {
		cfg.maxConnections = maxConns
	}
}

func newConfig(opts []Option) *storeConfig {
	cfg := &storeConfig{maxConnections: 10}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driverName, dsn string, opts ...Option) (*Store, error) {
	switch driverName {
	case DriverPostgres, DriverPgx, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driverName)
	}

	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	cfg := newConfig(opts)
	db.SetMaxOpenConns(cfg.maxConnections)
	db.SetMaxIdleConns(max(1, cfg.maxConnections/2))

	return &Store{db: db, config: cfg}, nil
}

// NewStoreFromDB constructs a Store from an existing connection. Useful for tests.
func NewStoreFromDB(db *sqlx.DB, opts ...Option) *Store {
	return &Store{db: db, config: newConfig(opts)}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database connection.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		username VARCHAR(512) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS workspace (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL UNIQUE REFERENCES users(id),
		root_analysis_group_id BIGINT,
		is_public BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id VARCHAR(36) PRIMARY KEY,
		owner VARCHAR(512) NOT NULL,
		name VARCHAR(1024) NOT NULL,
		display_name VARCHAR(1024) NOT NULL,
		analysis_id VARCHAR(255) NOT NULL,
		status VARCHAR(32) NOT NULL,
		submitted_at TIMESTAMP NOT NULL,
		UNIQUE (owner, name)
	)`,
	`CREATE TABLE IF NOT EXISTS genome_reference (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(512) NOT NULL,
		path VARCHAR(1024) NOT NULL,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_by VARCHAR(512) NOT NULL,
		created_on TIMESTAMP NOT NULL
	)`,
}

// InitDB creates the tables if they do not exist.
func (s *Store) InitDB(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

func (s *Store) logQuery(query string, args ...interface{}) {
	if s.config.logQueries {
		log.Printf("SQL: %s Args: %v", query, args)
	}
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	query = s.db.Rebind(query)
	s.logQuery(query, args...)
	return s.db.ExecContext(ctx, query, args...)
}

func (s *Store) namedExec(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	s.logQuery(query, arg)
	return s.db.NamedExecContext(ctx, query, arg)
}

func (s *Store) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	query = s.db.Rebind(query)
	s.logQuery(query, args...)
	err := s.db.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *Store) sel(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	query = s.db.Rebind(query)
	s.logQuery(query, args...)
	return s.db.SelectContext(ctx, dest, query, args...)
}

// =============================================================================
// Jobs
// =============================================================================

const jobColumns = `id, owner, name, display_name, analysis_id, status, submitted_at`

// SaveJob inserts or updates a job. An empty ID is replaced with a new UUID.
func (s *Store) SaveJob(ctx context.Context, job *entities.Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}

	_, err := s.namedExec(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (:id, :owner, :name, :display_name, :analysis_id, :status, :submitted_at)
		ON CONFLICT (id) DO UPDATE SET
			owner = EXCLUDED.owner,
			name = EXCLUDED.name,
			display_name = EXCLUDED.display_name,
			analysis_id = EXCLUDED.analysis_id,
			status = EXCLUDED.status,
			submitted_at = EXCLUDED.submitted_at`, job)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateName, job.Owner, job.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

// DeleteJob removes the given job.
func (s *Store) DeleteJob(ctx context.Context, job *entities.Job) error {
	return s.DeleteJobByID(ctx, job.ID)
}

// DeleteJobByID removes the job with the given ID.
func (s *Store) DeleteJobByID(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: job %s", ErrNotFound, id)
	}
	return nil
}

// FindJobByID returns the job with the given ID.
func (s *Store) FindJobByID(ctx context.Context, id string) (*entities.Job, error) {
	var job entities.Job
	err := s.get(ctx, &job, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: job %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find job: %w", err)
	}
	return &job, nil
}

// FindAllJobs returns every job ordered by submission time.
func (s *Store) FindAllJobs(ctx context.Context) ([]entities.Job, error) {
	var jobs []entities.Job
	if err := s.sel(ctx, &jobs, `SELECT `+jobColumns+` FROM jobs ORDER BY submitted_at, id`); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// FindJobNamesByOwnerAndPrefix returns the owner's job names starting with prefix.
// LIKE is case-insensitive on SQLite, so rows are filtered again here.
func (s *Store) FindJobNamesByOwnerAndPrefix(ctx context.Context, owner, prefix string) ([]string, error) {
	var rows []string
	err := s.sel(ctx, &rows,
		`SELECT name FROM jobs WHERE owner = ? AND name LIKE ? ESCAPE '\'`,
		owner, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to find job names: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, name := range rows {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgerrcode.UniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
