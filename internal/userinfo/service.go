// Package userinfo reports a user's workspace, creating the user and workspace on first access.
package userinfo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"metadactyl/internal/entities"
	"metadactyl/internal/store"
)

// Repository is the subset of the data store the service needs.
type Repository interface {
	SaveUser(ctx context.Context, user *entities.User) error
	FindUserByUsername(ctx context.Context, username string) (*entities.User, error)
	SaveWorkspace(ctx context.Context, ws *entities.Workspace) error
	FindWorkspaceByUserID(ctx context.Context, userID string) (*entities.Workspace, error)
}

// Service looks up user information.
type Service struct {
	repo Repository
}

// NewService creates a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetUserInfo returns the workspace summary for username.
func (s *Service) GetUserInfo(ctx context.Context, username string) (*entities.UserInfo, error) {
	if strings.TrimSpace(username) == "" {
		return nil, errors.New("username is required")
	}

	user, err := s.findOrCreateUser(ctx, username)
	if err != nil {
		return nil, err
	}
	ws, err := s.findOrCreateWorkspace(ctx, user)
	if err != nil {
		return nil, err
	}
	return entities.NewUserInfo(ws), nil
}

func (s *Service) findOrCreateUser(ctx context.Context, username string) (*entities.User, error) {
	user, err := s.repo.FindUserByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to find user %s: %w", username, err)
	}

	user = &entities.User{Username: username}
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", username, err)
	}
	log.Printf("created user %s", username)
	return user, nil
}

func (s *Service) findOrCreateWorkspace(ctx context.Context, user *entities.User) (*entities.Workspace, error) {
	ws, err := s.repo.FindWorkspaceByUserID(ctx, user.ID)
	if err == nil {
		return ws, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to find workspace for %s: %w", user.Username, err)
	}

	ws = &entities.Workspace{UserID: user.ID, IsNew: true}
	if err := s.repo.SaveWorkspace(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to create workspace for %s: %w", user.Username, err)
	}
	log.Printf("created workspace %s for %s", ws.ID, user.Username)
	return ws, nil
}
