// Copyright 2026 The BugTrail Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package identity

import (
	"context"
	"errors"
	"time"

	"github.com/bugtrail/bugtrail/internal/policy"
)

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// User represents a user account. The password hash never travels on
// this struct; repositories hand it out separately to the authenticator.
type User struct {
	ID        int64
	Username  string
	Name      string
	Email     string
	Role      policy.Role
	ProjectID *int64 // at most one project for a regular user
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Actor converts the account into the actor value threaded through
// service calls.
func (u *User) Actor() policy.Actor {
	return policy.Actor{
		ID:        u.ID,
		Name:      u.Name,
		Role:      u.Role,
		ProjectID: u.ProjectID,
	}
}

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	// Create inserts a new account and fills in the generated ID.
	Create(ctx context.Context, user *User, passwordHash string) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByUsername retrieves an account by its unique username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetPasswordHash retrieves the stored hash for verification.
	GetPasswordHash(ctx context.Context, userID int64) (string, error)

	// Update rewrites the mutable account fields (username, name,
	// email, role, project).
	Update(ctx context.Context, user *User) error

	// UpdatePassword replaces the stored hash.
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error

	// SetProject assigns or clears (nil) the account's project.
	SetProject(ctx context.Context, userID int64, projectID *int64) error

	// List retrieves every account ordered by display name.
	List(ctx context.Context) ([]*User, error)

	// Delete removes the account record.
	Delete(ctx context.Context, id int64) error

	// ClearAssignments nulls the account out as assignee on any bug
	// pointing at it. Called before Delete.
	ClearAssignments(ctx context.Context, userID int64) error
}
