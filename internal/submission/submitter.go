// Package submission records job submissions under names that are unique per user.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"metadactyl/internal/entities"
	"metadactyl/internal/naming"
	"metadactyl/internal/store"
)

// Common errors
var (
	ErrInvalidExperiment = errors.New("invalid experiment")
)

// Experiment is a request to run an analysis.
type Experiment struct {
	Name       string `json:"name"`
	AnalysisID string `json:"analysis_id"`
}

// JobSaver persists jobs. A name already used by the owner must be reported as store.ErrDuplicateName.
type JobSaver interface {
	SaveJob(ctx context.Context, job *entities.Job) error
}

// Submitter turns experiments into saved jobs.
type Submitter struct {
	jobs       JobSaver
	uniquifier naming.Uniquifier
	now        func() time.Time
}

// NewSubmitter creates a Submitter.
func NewSubmitter(jobs JobSaver, uniquifier naming.Uniquifier) *Submitter {
	return &Submitter{
		jobs:       jobs,
		uniquifier: uniquifier,
		now:        time.Now,
	}
}

// Submit saves a new job for username. If the requested name is already in use
// the job is saved under a unique variant and DisplayName keeps the requested name.
func (s *Submitter) Submit(ctx context.Context, username string, exp Experiment) (*entities.Job, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidExperiment)
	}
	if strings.TrimSpace(exp.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidExperiment)
	}
	if strings.TrimSpace(exp.AnalysisID) == "" {
		return nil, fmt.Errorf("%w: analysis id is required", ErrInvalidExperiment)
	}

	job, err := s.trySubmit(ctx, username, exp)
	if errors.Is(err, store.ErrDuplicateName) {
		// Another submission took the name between the lookup and the insert.
		log.Printf("job name %q for %s was taken concurrently, retrying", exp.Name, username)
		job, err = s.trySubmit(ctx, username, exp)
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Submitter) trySubmit(ctx context.Context, username string, exp Experiment) (*entities.Job, error) {
	name, err := s.uniquifier.EnsureUniqueName(ctx, username, exp.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to choose job name: %w", err)
	}

	job := &entities.Job{
		Owner:       username,
		Name:        name,
		DisplayName: exp.Name,
		AnalysisID:  exp.AnalysisID,
		Status:      entities.JobSubmitted,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}
