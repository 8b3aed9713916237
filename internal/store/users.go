package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"metadactyl/internal/entities"
)

// SaveUser inserts or updates a user. An empty ID is replaced with a new UUID.
func (s *Store) SaveUser(ctx context.Context, user *entities.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	_, err := s.namedExec(ctx, `
		INSERT INTO users (id, username) VALUES (:id, :username)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username`, user)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateUsername, user.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.Username, err)
	}
	return nil
}

// FindUserByUsername returns the user with the given username.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	var user entities.User
	err := s.get(ctx, &user, `SELECT id, username FROM users WHERE username = ?`, username)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// SaveWorkspace inserts or updates a workspace. An empty ID is replaced with a new UUID.
func (s *Store) SaveWorkspace(ctx context.Context, ws *entities.Workspace) error {
	if ws.ID == "" {
		ws.ID = uuid.New().String()
	}
	_, err := s.namedExec(ctx, `
		INSERT INTO workspace (id, user_id, root_analysis_group_id, is_public)
		VALUES (:id, :user_id, :root_analysis_group_id, :is_public)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			root_analysis_group_id = EXCLUDED.root_analysis_group_id,
			is_public = EXCLUDED.is_public`, ws)
	if err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}
	return nil
}

// FindWorkspaceByUserID returns the workspace owned by the given user.
func (s *Store) FindWorkspaceByUserID(ctx context.Context, userID string) (*entities.Workspace, error) {
	var ws entities.Workspace
	err := s.get(ctx, &ws,
		`SELECT id, user_id, root_analysis_group_id, is_public FROM workspace WHERE user_id = ?`, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: workspace for user %s", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}
	return &ws, nil
}

// FindAllUsers lists users by username.
func (s *Store) FindAllUsers(ctx context.Context) ([]entities.User, error) {
	var users []entities.User
	if err := s.sel(ctx, &users, `SELECT id, username FROM users ORDER BY username`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// FindAllWorkspaces lists every workspace.
func (s *Store) FindAllWorkspaces(ctx context.Context) ([]entities.Workspace, error) {
	var workspaces []entities.Workspace
	if err := s.sel(ctx, &workspaces, `SELECT id, user_id, root_analysis_group_id, is_public FROM workspace ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, nil
}
