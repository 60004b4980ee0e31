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
	"fmt"
	"strings"

	"github.com/bugtrail/bugtrail/internal/activity"
	"github.com/bugtrail/bugtrail/internal/policy"
	"github.com/bugtrail/bugtrail/internal/validate"
)

// Service provides authentication and user management.
type Service struct {
	repo     UserRepository
	hasher   *PasswordHasher
	recorder activity.Recorder
}

// NewService creates a new identity service.
func NewService(repo UserRepository, hasher *PasswordHasher, recorder activity.Recorder) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		recorder: recorder,
	}
}

// Authenticate verifies a username/password pair and returns the matching
// account. Lookup-then-verify; unknown usernames and bad passwords are
// indistinguishable to the caller. No lockout is applied and failed
// attempts leave no activity entry.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	hash, err := s.repo.GetPasswordHash(ctx, user.ID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, hash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      &user.ID,
		Action:      activity.ActionLogin,
		Description: "User logged in",
	})

	return user, nil
}

// Logout records the logout of the given actor. Session teardown is the
// transport layer's job.
func (s *Service) Logout(ctx context.Context, actor policy.Actor) {
	s.recorder.Record(ctx, activity.Entry{
		UserID:      &actor.ID,
		Action:      activity.ActionLogout,
		Description: "User logged out",
	})
}

// CreateUserInput carries the fields for account creation.
type CreateUserInput struct {
	Username  string
	Name      string
	Email     string
	Password  string
	Role      policy.Role
	ProjectID *int64
}

// CreateUser creates a new account. Admin only.
func (s *Service) CreateUser(ctx context.Context, actor policy.Actor, in CreateUserInput) (*User, error) {
	if err := policy.Require(actor, policy.ActionCreateUser); err != nil {
		return nil, err
	}

	var v validate.Errors
	if len(in.Username) < 3 {
		v.Add("username must be at least 3 characters")
	}
	if in.Name == "" {
		v.Add("name is required")
	}
	if !isValidEmail(in.Email) {
		v.Add("valid email is required")
	}
	if len(in.Password) < 6 {
		v.Add("password must be at least 6 characters")
	}
	if !in.Role.Valid() {
		v.Add("role must be one of Admin, Manager, User")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username:  in.Username,
		Name:      in.Name,
		Email:     in.Email,
		Role:      in.Role,
		ProjectID: in.ProjectID,
	}
	if err := s.repo.Create(ctx, user, hash); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      &actor.ID,
		Action:      activity.ActionCreateUser,
		Description: "Created user: " + user.Username,
	})

	return user, nil
}

// UpdateUserInput carries the fields for an account update. Role and
// Project are applied only when the requester is an Admin; for anyone
// else they are silently ignored, not rejected. Password is replaced only
// when non-empty.
type UpdateUserInput struct {
	Username   string
	Name       string
	Email      string
	Password   string
	Role       policy.Role
	ProjectID  *int64
	ProjectSet bool // distinguishes "clear project" (nil+true) from "leave alone"
}

// UpdateUser updates an account. Admins may update anyone and any field;
// an account owner may update their own non-privileged fields.
func (s *Service) UpdateUser(ctx context.Context, actor policy.Actor, userID int64, in UpdateUserInput) error {
	if actor.Role != policy.RoleAdmin && actor.ID != userID {
		return policy.ErrPermissionDenied
	}

	var v validate.Errors
	if len(in.Username) < 3 {
		v.Add("username must be at least 3 characters")
	}
	if in.Name == "" {
		v.Add("name is required")
	}
	if err := v.Err(); err != nil {
		return err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	user.Username = in.Username
	user.Name = in.Name
	if in.Email != "" {
		user.Email = in.Email
	}
	if actor.Role == policy.RoleAdmin {
		if in.Role != "" {
			if !in.Role.Valid() {
				return &validate.Error{Fields: []string{"role must be one of Admin, Manager, User"}}
			}
			user.Role = in.Role
		}
		if in.ProjectSet {
			user.ProjectID = in.ProjectID
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
			return err
		}
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      &actor.ID,
		Action:      activity.ActionUpdateUser,
		Description: "Updated user: " + user.Username,
	})

	return nil
}

// DeleteUser removes an account. Admin only. The account is first
// detached from its project and cleared as assignee on every bug, then
// the record itself is removed. Bugs the account raised stay behind;
// the schema nulls their owner and updater references.
func (s *Service) DeleteUser(ctx context.Context, actor policy.Actor, userID int64) error {
	if err := policy.Require(actor, policy.ActionDeleteUser); err != nil {
		return err
	}

	if err := s.repo.ClearAssignments(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear assignments: %w", err)
	}
	if err := s.repo.SetProject(ctx, userID, nil); err != nil {
		return fmt.Errorf("failed to clear project assignment: %w", err)
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      &actor.ID,
		Action:      activity.ActionDeleteUser,
		Description: fmt.Sprintf("Deleted user ID: %d", userID),
	})

	return nil
}

// GetUser retrieves an account by ID with no visibility check; internal
// callers (session resolution) use it.
func (s *Service) GetUser(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UserDetails retrieves an account on behalf of an actor: Admins see
// anyone, everyone else only themselves.
func (s *Service) UserDetails(ctx context.Context, actor policy.Actor, userID int64) (*User, error) {
	if actor.Role != policy.RoleAdmin && actor.ID != userID {
		return nil, policy.ErrPermissionDenied
	}
	return s.repo.GetByID(ctx, userID)
}

// ListUsers returns every account. Admin only.
func (s *Service) ListUsers(ctx context.Context, actor policy.Actor) ([]*User, error) {
	if err := policy.Require(actor, policy.ActionViewAllUsers); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

func isValidEmail(email string) bool {
	at := strings.Index(email, "@")
	return len(email) > 3 && at > 0 && at < len(email)-1
}
