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

package project

import (
	"context"
	"fmt"

	"github.com/bugtrail/bugtrail/internal/activity"
	"github.com/bugtrail/bugtrail/internal/identity"
	"github.com/bugtrail/bugtrail/internal/policy"
	"github.com/bugtrail/bugtrail/internal/validate"
)

// Service provides project management and the user-to-project assignment
// relation.
type Service struct {
	repo     Repository
	users    identity.UserRepository
	recorder activity.Recorder
}

// NewService creates a new project service.
func NewService(repo Repository, users identity.UserRepository, recorder activity.Recorder) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		recorder: recorder,
	}
}

// Input carries the fields for project creation and update. Description
// is validated but not stored.
type Input struct {
	Name        string
	Description string
}

func validateInput(in Input) error {
	var v validate.Errors
	if len(in.Name) < 3 {
		v.Add("project name must be at least 3 characters")
	}
	if in.Description == "" {
		v.Add("project description is required")
	}
	return v.Err()
}

// CreateProject creates a new project. Admin or Manager.
func (s *Service) CreateProject(ctx context.Context, actor policy.Actor, in Input) (*Project, error) {
	if err := policy.Require(actor, policy.ActionCreateProject); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	p := &Project{Name: in.Name}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      &actor.ID,
		Action:      activity.ActionCreateProject,
		Description: "Created project: " + p.Name,
	})

	return p, nil
}

// UpdateProject renames a project. Admin or Manager.
func (s *Service) UpdateProject(ctx context.Context, actor policy.Actor, projectID int64, in Input) error {
	if err := policy.Require(actor, policy.ActionUpdateProject); err != nil {
		return err
	}
	if err := validateInput(in); err != nil {
		return err
	}

	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}

	p.Name = in.Name
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      &actor.ID,
		Action:      activity.ActionUpdateProject,
		Description: "Updated project: " + p.Name,
	})

	return nil
}

// ProjectDetails retrieves one project: elevated actors see any project,
// regular users only their own assignment.
func (s *Service) ProjectDetails(ctx context.Context, actor policy.Actor, projectID int64) (*Project, error) {
	if !policy.CanViewProject(actor, projectID) {
		return nil, policy.ErrPermissionDenied
	}
	return s.repo.GetByID(ctx, projectID)
}

// ListProjects returns the projects visible to the actor: all of them for
// Admin/Manager, the actor's own assignment (or nothing) otherwise.
func (s *Service) ListProjects(ctx context.Context, actor policy.Actor) ([]*Project, error) {
	if actor.Role.Elevated() {
		return s.repo.List(ctx)
	}
	if actor.ProjectID == nil {
		return []*Project{}, nil
	}
	p, err := s.repo.GetByID(ctx, *actor.ProjectID)
	if err != nil {
		return nil, err
	}
	return []*Project{p}, nil
}

// AssignUser assigns a user to a project. Admin or Manager. A user
// already on a different project must be removed first; re-assigning the
// same project is an idempotent success.
func (s *Service) AssignUser(ctx context.Context, actor policy.Actor, userID, projectID int64) error {
	if err := policy.Require(actor, policy.ActionAssignUserToProject); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.ProjectID != nil && *user.ProjectID != projectID {
		return ErrAlreadyAssigned
	}
	if _, err := s.repo.GetByID(ctx, projectID); err != nil {
		return err
	}

	if err := s.users.SetProject(ctx, userID, &projectID); err != nil {
		return fmt.Errorf("failed to assign user to project: %w", err)
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      &actor.ID,
		Action:      activity.ActionAssignToProject,
		Description: fmt.Sprintf("Assigned user %d to project %d", userID, projectID),
	})

	return nil
}

// RemoveUser clears a user's assignment to the given project. Admin or
// Manager. Removing a user from a project they are not on fails without
// touching anything.
func (s *Service) RemoveUser(ctx context.Context, actor policy.Actor, userID, projectID int64) error {
	if err := policy.Require(actor, policy.ActionRemoveUserFromProject); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.ProjectID == nil || *user.ProjectID != projectID {
		return ErrNotAssigned
	}

	if err := s.users.SetProject(ctx, userID, nil); err != nil {
		return fmt.Errorf("failed to remove user from project: %w", err)
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      &actor.ID,
		Action:      activity.ActionRemoveFromProject,
		Description: fmt.Sprintf("Removed user %d from project %d", userID, projectID),
	})

	return nil
}
