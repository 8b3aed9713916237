package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"metadactyl/internal/entities"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStoreFromDB(sqlx.NewDb(db, DriverPostgres)), mock
}

func TestFindJobNamesByOwnerAndPrefix(t *testing.T) {
	s, mock := newMockStore(t)

	query := regexp.QuoteMeta(`SELECT name FROM jobs WHERE owner = $1 AND name LIKE $2 ESCAPE '\'`)
	rows := sqlmock.NewRows([]string{"name"}).
		AddRow("my_job").
		AddRow("my_job-1").
		AddRow("MY_JOB-2")
	mock.ExpectQuery(query).WithArgs("alice", `my\_job%`).WillReturnRows(rows)

	names, err := s.FindJobNamesByOwnerAndPrefix(context.Background(), "alice", "my_job")
	if err != nil {
		t.Fatalf("FindJobNamesByOwnerAndPrefix returned error: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d: %v", len(names), names)
	}
	if names[0] != "my_job" || names[1] != "my_job-1" {
		t.Errorf("unexpected names: %v", names)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestFindJobNamesByOwnerAndPrefix_QueryError(t *testing.T) {
	s, mock := newMockStore(t)

	cause := errors.New("connection reset")
	mock.ExpectQuery(`SELECT name FROM jobs`).WillReturnError(cause)

	_, err := s.FindJobNamesByOwnerAndPrefix(context.Background(), "alice", "job")
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"job":       "job",
		"50%_done":  `50\%\_done`,
		`back\path`: `back\\path`,
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSaveJob_AssignsID(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO jobs (id, owner, name, display_name, analysis_id, status, submitted_at)`)).
		WithArgs(sqlmock.AnyArg(), "alice", "job-1", "job", "wc", entities.JobSubmitted, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	job := &entities.Job{Owner: "alice", Name: "job-1", DisplayName: "job", AnalysisID: "wc", Status: entities.JobSubmitted}
	if err := s.SaveJob(context.Background(), job); err != nil {
		t.Fatalf("SaveJob returned error: %v", err)
	}
	if job.ID == "" {
		t.Error("expected SaveJob to assign an ID")
	}
	if job.SubmittedAt.IsZero() {
		t.Error("expected SaveJob to set the submission time")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestSaveJob_DuplicateName(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO jobs`).WillReturnError(&pq.Error{Code: "23505"})

	err := s.SaveJob(context.Background(), &entities.Job{ID: "j1", Owner: "alice", Name: "job"})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestDeleteJobByID(t *testing.T) {
	s, mock := newMockStore(t)
	query := regexp.QuoteMeta(`DELETE FROM jobs WHERE id = $1`)

	mock.ExpectExec(query).WithArgs("j1").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := s.DeleteJob(context.Background(), &entities.Job{ID: "j1"}); err != nil {
		t.Fatalf("DeleteJob returned error: %v", err)
	}

	mock.ExpectExec(query).WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := s.DeleteJobByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestFindJobByID(t *testing.T) {
	s, mock := newMockStore(t)
	query := regexp.QuoteMeta(`SELECT id, owner, name, display_name, analysis_id, status, submitted_at FROM jobs WHERE id = $1`)
	submitted := time.Now().UTC().Truncate(time.Second)

	mock.ExpectQuery(query).WithArgs("j1").WillReturnRows(
		sqlmock.NewRows([]string{"id", "owner", "name", "display_name", "analysis_id", "status", "submitted_at"}).
			AddRow("j1", "alice", "job-1", "job", "wc", "Submitted", submitted))

	job, err := s.FindJobByID(context.Background(), "j1")
	if err != nil {
		t.Fatalf("FindJobByID returned error: %v", err)
	}
	if job.Name != "job-1" || job.DisplayName != "job" || job.Status != entities.JobSubmitted {
		t.Errorf("unexpected job: %+v", job)
	}
	if !job.SubmittedAt.Equal(submitted) {
		t.Errorf("unexpected submission time: %v", job.SubmittedAt)
	}

	mock.ExpectQuery(query).WithArgs("missing").WillReturnRows(
		sqlmock.NewRows([]string{"id", "owner", "name", "display_name", "analysis_id", "status", "submitted_at"}))
	if _, err := s.FindJobByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInitDB(t *testing.T) {
	s, mock := newMockStore(t)
	for range schema {
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS`).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := s.InitDB(context.Background()); err != nil {
		t.Fatalf("InitDB returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", "dsn"); err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pq unique", &pq.Error{Code: "23505"}, true},
		{"pq foreign key", &pq.Error{Code: "23503"}, false},
		{"pgx unique", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped pgx unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"other", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
