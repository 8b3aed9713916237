package entities

import (
	"time"
)

// ============================================================================
// USERS AND WORKSPACES
// ============================================================================

// User is a platform account. Username scopes job names.
type User struct {
	ID       string `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
}

// Workspace holds a user's private analysis tree.
type Workspace struct {
	ID                  string `json:"id" db:"id"`
	UserID              string `json:"user_id" db:"user_id"`
	RootAnalysisGroupID *int64 `json:"root_analysis_group_id,omitempty" db:"root_analysis_group_id"`
	IsPublic            bool   `json:"is_public" db:"is_public"`

	// IsNew is set when the workspace was created by the current request. Never stored.
	IsNew bool `json:"-" db:"-"`
}

// UserInfo is the workspace summary returned to clients.
type UserInfo struct {
	WorkspaceID  string `json:"workspaceId"`
	NewWorkspace bool   `json:"newWorkspace"`
}

// NewUserInfo summarizes a workspace.
func NewUserInfo(ws *Workspace) *UserInfo {
	return &UserInfo{
		WorkspaceID:  ws.ID,
		NewWorkspace: ws.IsNew,
	}
}

// ============================================================================
// JOBS
// ============================================================================

// JobStatus is the lifecycle state recorded for a submitted job.
type JobStatus string

const (
	JobSubmitted JobStatus = "Submitted"
	JobRunning   JobStatus = "Running"
	JobCompleted JobStatus = "Completed"
	JobFailed    JobStatus = "Failed"
)

// Job is a submitted analysis run. Name is unique per Owner.
type Job struct {
	ID          string    `json:"id" db:"id"`
	Owner       string    `json:"owner" db:"owner"`
	Name        string    `json:"name" db:"name"`
	DisplayName string    `json:"display_name" db:"display_name"`
	AnalysisID  string    `json:"analysis_id" db:"analysis_id"`
	Status      JobStatus `json:"status" db:"status"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
}

// ============================================================================
// REFERENCE DATA
// ============================================================================

// ReferenceGenome points at a genome assembly available to analyses.
type ReferenceGenome struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Path      string    `json:"path" db:"path"`
	Deleted   bool      `json:"deleted" db:"deleted"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedOn time.Time `json:"created_on" db:"created_on"`
}
