// Package mockstore is an in-memory data store seeded from JSON fixture files.
package mockstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"metadactyl/internal/entities"
	"metadactyl/internal/store"
)

// Fixture file names inside the mock data directory.
const (
	UsersFile            = "users.json"
	WorkspacesFile       = "workspaces.json"
	JobsFile             = "jobs.json"
	ReferenceGenomesFile = "reference_genomes.json"
)

// Store keeps every record in memory. It returns the same sentinel errors as the SQL store.
type Store struct {
	mu         sync.RWMutex
	users      map[string]entities.User
	workspaces map[string]entities.Workspace
	jobs       map[string]entities.Job
	genomes    map[string]entities.ReferenceGenome
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:      make(map[string]entities.User),
		workspaces: make(map[string]entities.Workspace),
		jobs:       make(map[string]entities.Job),
		genomes:    make(map[string]entities.ReferenceGenome),
	}
}

// Load creates a store seeded from the fixture files in dataPath. Missing files are treated as empty.
func Load(dataPath string) (*Store, error) {
	s := New()
	if err := s.Import(dataPath); err != nil {
		return nil, err
	}
	return s, nil
}

// Import merges the fixture files in dir into the store. Nothing is merged if any
// record conflicts with another or with the store's contents.
func (s *Store) Import(dir string) error {
	var (
		users      []entities.User
		workspaces []entities.Workspace
		jobs       []entities.Job
		genomes    []entities.ReferenceGenome
	)
	if err := readFixture(dir, UsersFile, &users); err != nil {
		return err
	}
	if err := readFixture(dir, WorkspacesFile, &workspaces); err != nil {
		return err
	}
	if err := readFixture(dir, JobsFile, &jobs); err != nil {
		return err
	}
	if err := readFixture(dir, ReferenceGenomesFile, &genomes); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stagedUsers := maps.Clone(s.users)
	for _, u := range users {
		if u.ID == "" {
			u.ID = uuid.New().String()
		}
		if usernameTaken(stagedUsers, u) {
			return fmt.Errorf("%w: %s in %s", store.ErrDuplicateUsername, u.Username, UsersFile)
		}
		stagedUsers[u.ID] = u
	}
	stagedJobs := maps.Clone(s.jobs)
	for _, j := range jobs {
		if j.ID == "" {
			j.ID = uuid.New().String()
		}
		if nameTaken(stagedJobs, j) {
			return fmt.Errorf("%w: %s/%s in %s", store.ErrDuplicateName, j.Owner, j.Name, JobsFile)
		}
		stagedJobs[j.ID] = j
	}

	s.users = stagedUsers
	s.jobs = stagedJobs
	for _, ws := range workspaces {
		if ws.ID == "" {
			ws.ID = uuid.New().String()
		}
		s.workspaces[ws.ID] = ws
	}
	for _, g := range genomes {
		if g.ID == "" {
			g.ID = uuid.New().String()
		}
		s.genomes[g.ID] = g
	}
	return nil
}

func readFixture(dir, name string, dest interface{}) error {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Source lists the records written by Export. Both data store implementations satisfy it.
type Source interface {
	FindAllUsers(ctx context.Context) ([]entities.User, error)
	FindAllWorkspaces(ctx context.Context) ([]entities.Workspace, error)
	FindAllJobs(ctx context.Context) ([]entities.Job, error)
	FindAllReferenceGenomes(ctx context.Context) ([]entities.ReferenceGenome, error)
}

// Export writes every record in src to dir as fixture files.
func Export(ctx context.Context, src Source, dir string) error {
	users, err := src.FindAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	workspaces, err := src.FindAllWorkspaces(ctx)
	if err != nil {
		return fmt.Errorf("failed to export workspaces: %w", err)
	}
	jobs, err := src.FindAllJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to export jobs: %w", err)
	}
	genomes, err := src.FindAllReferenceGenomes(ctx)
	if err != nil {
		return fmt.Errorf("failed to export reference genomes: %w", err)
	}
	return WriteFixtures(dir, users, workspaces, jobs, genomes)
}

// WriteFixtures writes records as fixture files that Load and Import understand.
func WriteFixtures(dir string, users []entities.User, workspaces []entities.Workspace, jobs []entities.Job, genomes []entities.ReferenceGenome) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	fixtures := []struct {
		name string
		data interface{}
	}{
		{UsersFile, users},
		{WorkspacesFile, workspaces},
		{JobsFile, jobs},
		{ReferenceGenomesFile, genomes},
	}
	for _, f := range fixtures {
		data, err := json.MarshalIndent(f.data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, f.name), data, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// InitDB is a no-op; the mock store needs no schema.
func (s *Store) InitDB(context.Context) error {
	return nil
}

// nameTaken reports whether another job in jobs already uses j's owner and name.
func nameTaken(jobs map[string]entities.Job, j entities.Job) bool {
	for id, other := range jobs {
		if id != j.ID && other.Owner == j.Owner && other.Name == j.Name {
			return true
		}
	}
	return false
}

// usernameTaken reports whether another user in users already has u's username.
func usernameTaken(users map[string]entities.User, u entities.User) bool {
	for id, other := range users {
		if id != u.ID && other.Username == u.Username {
			return true
		}
	}
	return false
}

// =============================================================================
// Jobs
// =============================================================================

func (s *Store) SaveJob(_ context.Context, job *entities.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	if nameTaken(s.jobs, *job) {
		return fmt.Errorf("%w: %s/%s", store.ErrDuplicateName, job.Owner, job.Name)
	}
	s.jobs[job.ID] = *job
	return nil
}

func (s *Store) DeleteJob(ctx context.Context, job *entities.Job) error {
	return s.DeleteJobByID(ctx, job.ID)
}

func (s *Store) DeleteJobByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return fmt.Errorf("%w: job %s", store.ErrNotFound, id)
	}
	delete(s.jobs, id)
	return nil
}

func (s *Store) FindJobByID(_ context.Context, id string) (*entities.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", store.ErrNotFound, id)
	}
	return &job, nil
}

func (s *Store) FindAllJobs(context.Context) ([]entities.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]entities.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool {
		if jobs[i].SubmittedAt.Equal(jobs[k].SubmittedAt) {
			return jobs[i].ID < jobs[k].ID
		}
		return jobs[i].SubmittedAt.Before(jobs[k].SubmittedAt)
	})
	return jobs, nil
}

func (s *Store) FindJobNamesByOwnerAndPrefix(_ context.Context, owner, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for _, j := range s.jobs {
		if j.Owner == owner && strings.HasPrefix(j.Name, prefix) {
			names = append(names, j.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// =============================================================================
// Users and workspaces
// =============================================================================

func (s *Store) SaveUser(_ context.Context, user *entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if usernameTaken(s.users, *user) {
		return fmt.Errorf("%w: %s", store.ErrDuplicateUsername, user.Username)
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) FindUserByUsername(_ context.Context, username string) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", store.ErrNotFound, username)
}

func (s *Store) FindAllUsers(context.Context) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]entities.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, k int) bool { return users[i].Username < users[k].Username })
	return users, nil
}

func (s *Store) SaveWorkspace(_ context.Context, ws *entities.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ws.ID == "" {
		ws.ID = uuid.New().String()
	}
	stored := *ws
	stored.IsNew = false
	s.workspaces[ws.ID] = stored
	return nil
}

func (s *Store) FindWorkspaceByUserID(_ context.Context, userID string) (*entities.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ws := range s.workspaces {
		if ws.UserID == userID {
			return &ws, nil
		}
	}
	return nil, fmt.Errorf("%w: workspace for user %s", store.ErrNotFound, userID)
}

func (s *Store) FindAllWorkspaces(context.Context) ([]entities.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workspaces := make([]entities.Workspace, 0, len(s.workspaces))
	for _, ws := range s.workspaces {
		workspaces = append(workspaces, ws)
	}
	sort.Slice(workspaces, func(i, k int) bool { return workspaces[i].ID < workspaces[k].ID })
	return workspaces, nil
}

// =============================================================================
// Reference genomes
// =============================================================================

func (s *Store) SaveReferenceGenome(_ context.Context, g *entities.ReferenceGenome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedOn.IsZero() {
		g.CreatedOn = time.Now().UTC()
	}
	s.genomes[g.ID] = *g
	return nil
}

func (s *Store) FindReferenceGenomeByID(_ context.Context, id string) (*entities.ReferenceGenome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.genomes[id]
	if !ok {
		return nil, fmt.Errorf("%w: reference genome %s", store.ErrNotFound, id)
	}
	return &g, nil
}

func (s *Store) FindAllReferenceGenomes(context.Context) ([]entities.ReferenceGenome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	genomes := make([]entities.ReferenceGenome, 0, len(s.genomes))
	for _, g := range s.genomes {
		genomes = append(genomes, g)
	}
	sort.Slice(genomes, func(i, k int) bool { return genomes[i].Name < genomes[k].Name })
	return genomes, nil
}
