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

package bug

import (
	"context"
	"fmt"
	"time"

	"github.com/bugtrail/bugtrail/internal/activity"
	"github.com/bugtrail/bugtrail/internal/policy"
	"github.com/bugtrail/bugtrail/internal/validate"
)

// Service provides bug tracking business logic. Record-level
// authorization lives here, next to the records it inspects; the coarse
// role table is consulted only for the unrestricted list queries.
type Service struct {
	repo     Repository
	recorder activity.Recorder
	now      func() time.Time
}

// NewService creates a new bug service.
func NewService(repo Repository, recorder activity.Recorder) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		now:      time.Now,
	}
}

// CreateInput carries the fields for bug creation. Owner and updated-by
// are never part of the input; they are stamped from the acting user so a
// client cannot spoof ownership.
type CreateInput struct {
	Summary      string
	Description  string
	ProjectID    int64
	AssignedToID *int64
	Status       Status    // zero value defaults to Unassigned
	Priority     Priority  // zero value defaults to Medium
	TargetDate   *time.Time
	DateRaised   time.Time // zero value defaults to now
}

// CreateBug creates a bug owned by the acting user. Any authenticated
// actor may create bugs.
func (s *Service) CreateBug(ctx context.Context, actor policy.Actor, in CreateInput) (*Bug, error) {
	now := s.now()

	var v validate.Errors
	if len(in.Summary) < 3 {
		v.Add("summary must be at least 3 characters")
	}
	if len(in.Description) < 10 {
		v.Add("description must be at least 10 characters")
	}
	if in.ProjectID <= 0 {
		v.Add("valid project ID is required")
	}
	if in.TargetDate != nil && !in.TargetDate.After(now) {
		v.Add("target date must be a valid future date")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	b := &Bug{
		Summary:      in.Summary,
		Description:  in.Description,
		ProjectID:    in.ProjectID,
		OwnerID:      actor.ID,
		AssignedToID: in.AssignedToID,
		Status:       in.Status,
		Priority:     in.Priority,
		TargetDate:   in.TargetDate,
		DateRaised:   in.DateRaised,
		UpdatedBy:    actor.ID,
	}
	if b.Status == 0 {
		b.Status = StatusUnassigned
	}
	if b.Priority == 0 {
		b.Priority = PriorityMedium
	}
	if b.DateRaised.IsZero() {
		b.DateRaised = now
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create bug: %w", err)
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      &actor.ID,
		BugID:       &b.ID,
		Action:      activity.ActionCreateBug,
		Description: "Bug created",
	})

	return b, nil
}

// UpdateInput carries the mutable subset of a bug. The project reference
// is absent on purpose: it never changes after creation.
type UpdateInput struct {
	Summary      string
	Description  string
	AssignedToID *int64
	Status       Status
	Priority     Priority
	TargetDate   *time.Time
}

// UpdateBug rewrites a bug's mutable fields. Requires mutation authority:
// Admin/Manager, or the bug's current assignee.
func (s *Service) UpdateBug(ctx context.Context, actor policy.Actor, bugID int64, in UpdateInput) error {
	b, err := s.repo.GetByID(ctx, bugID)
	if err != nil {
		return err
	}
	if !policy.CanMutateBug(actor, b.AssignedToID) {
		return policy.ErrPermissionDenied
	}

	var v validate.Errors
	if len(in.Summary) < 3 {
		v.Add("summary must be at least 3 characters")
	}
	if len(in.Description) < 10 {
		v.Add("description must be at least 10 characters")
	}
	if !in.Status.Valid() {
		v.Add("valid status is required")
	}
	if !in.Priority.Valid() {
		v.Add("valid priority is required")
	}
	if in.TargetDate != nil && !in.TargetDate.After(s.now()) {
		v.Add("target date must be a valid future date")
	}
	if err := v.Err(); err != nil {
		return err
	}

	b.Summary = in.Summary
	b.Description = in.Description
	b.AssignedToID = in.AssignedToID
	b.Status = in.Status
	b.Priority = in.Priority
	b.TargetDate = in.TargetDate
	b.UpdatedBy = actor.ID

	if err := s.repo.Update(ctx, b); err != nil {
		return err
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      &actor.ID,
		BugID:       &bugID,
		Action:      activity.ActionUpdateBug,
		Description: "Bug updated",
	})

	return nil
}

// UpdateBugStatus changes only the status. Same mutation authority as a
// full update.
func (s *Service) UpdateBugStatus(ctx context.Context, actor policy.Actor, bugID int64, status Status) error {
	if !status.Valid() {
		var v validate.Errors
		v.Add("valid status is required")
		return v.Err()
	}

	b, err := s.repo.GetByID(ctx, bugID)
	if err != nil {
		return err
	}
	if !policy.CanMutateBug(actor, b.AssignedToID) {
		return policy.ErrPermissionDenied
	}

	b.Status = status
	b.UpdatedBy = actor.ID
	if err := s.repo.Update(ctx, b); err != nil {
		return err
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      &actor.ID,
		BugID:       &bugID,
		Action:      activity.ActionUpdateBug,
		Description: "Bug status updated to " + status.String(),
	})

	return nil
}

// DeleteBug removes a bug and its activity rows. Same mutation authority
// as an update.
func (s *Service) DeleteBug(ctx context.Context, actor policy.Actor, bugID int64) error {
	b, err := s.repo.GetByID(ctx, bugID)
	if err != nil {
		return err
	}
	if !policy.CanMutateBug(actor, b.AssignedToID) {
		return policy.ErrPermissionDenied
	}

	if err := s.repo.Delete(ctx, bugID); err != nil {
		return err
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      &actor.ID,
		Action:      activity.ActionDeleteBug,
		Description: fmt.Sprintf("Deleted bug ID: %d", bugID),
	})

	return nil
}

// AssignBug sets the bug's assignee. The mutation-authority check runs
// against the assigner, before the assignee is written.
func (s *Service) AssignBug(ctx context.Context, actor policy.Actor, bugID, assigneeID int64) error {
	b, err := s.repo.GetByID(ctx, bugID)
	if err != nil {
		return err
	}
	if !policy.CanMutateBug(actor, b.AssignedToID) {
		return policy.ErrPermissionDenied
	}

	if err := s.repo.SetAssignee(ctx, bugID, &assigneeID); err != nil {
		return err
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      &actor.ID,
		BugID:       &bugID,
		Action:      activity.ActionAssignBug,
		Description: fmt.Sprintf("Bug assigned to user %d", assigneeID),
	})

	return nil
}

// UnassignBug clears the bug's assignee. Beyond the session there is no
// record-level check on this transition.
func (s *Service) UnassignBug(ctx context.Context, actor policy.Actor, bugID int64) error {
	if err := s.repo.SetAssignee(ctx, bugID, nil); err != nil {
		return err
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      &actor.ID,
		BugID:       &bugID,
		Action:      activity.ActionUnassignBug,
		Description: "Bug unassigned",
	})

	return nil
}

// CloseBug marks a bug closed, stamping the close time and fix text.
// Beyond the session there is no record-level check on this transition,
// and closing an already-closed bug re-applies the same state without
// erroring.
func (s *Service) CloseBug(ctx context.Context, actor policy.Actor, bugID int64, fixDescription string) error {
	if err := s.repo.Close(ctx, bugID, s.now(), fixDescription); err != nil {
		return err
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      &actor.ID,
		BugID:       &bugID,
		Action:      activity.ActionCloseBug,
		Description: "Bug closed: " + fixDescription,
	})

	return nil
}

// BugDetails retrieves one bug, subject to project visibility: elevated
// actors see everything, regular users only bugs on their own project.
func (s *Service) BugDetails(ctx context.Context, actor policy.Actor, bugID int64) (*Bug, error) {
	b, err := s.repo.GetByID(ctx, bugID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewProject(actor, b.ProjectID) {
		return nil, policy.ErrPermissionDenied
	}
	return b, nil
}

// BugsForActor returns the actor's default bug list: every bug for
// Admin/Manager, the bugs of their own project (or nothing) otherwise.
func (s *Service) BugsForActor(ctx context.Context, actor policy.Actor) ([]*Bug, error) {
	if actor.Role.Elevated() {
		return s.repo.ListAll(ctx)
	}
	if actor.ProjectID == nil {
		return []*Bug{}, nil
	}
	return s.repo.ListByProject(ctx, *actor.ProjectID)
}

// BugsByProject lists a project's bugs, subject to project visibility.
func (s *Service) BugsByProject(ctx context.Context, actor policy.Actor, projectID int64) ([]*Bug, error) {
	if !policy.CanViewProject(actor, projectID) {
		return nil, policy.ErrPermissionDenied
	}
	return s.repo.ListByProject(ctx, projectID)
}

// OpenBugsByProject lists a project's open bugs, subject to project
// visibility.
func (s *Service) OpenBugsByProject(ctx context.Context, actor policy.Actor, projectID int64) ([]*Bug, error) {
	if !policy.CanViewProject(actor, projectID) {
		return nil, policy.ErrPermissionDenied
	}
	return s.repo.ListOpenByProject(ctx, projectID)
}

// OverdueBugsByProject lists a project's open bugs past their target
// date, subject to project visibility.
func (s *Service) OverdueBugsByProject(ctx context.Context, actor policy.Actor, projectID int64) ([]*Bug, error) {
	if !policy.CanViewProject(actor, projectID) {
		return nil, policy.ErrPermissionDenied
	}
	return s.repo.ListOverdueByProject(ctx, projectID, s.now())
}

// BugsAssignedToActor lists the bugs currently assigned to the actor.
func (s *Service) BugsAssignedToActor(ctx context.Context, actor policy.Actor) ([]*Bug, error) {
	return s.repo.ListByAssignee(ctx, actor.ID)
}

// BugsOwnedByActor lists the bugs the actor raised.
func (s *Service) BugsOwnedByActor(ctx context.Context, actor policy.Actor) ([]*Bug, error) {
	return s.repo.ListByOwner(ctx, actor.ID)
}

// UnassignedBugs lists every bug with no assignee. Admin or Manager.
func (s *Service) UnassignedBugs(ctx context.Context, actor policy.Actor) ([]*Bug, error) {
	if err := policy.Require(actor, policy.ActionViewAllBugs); err != nil {
		return nil, err
	}
	return s.repo.ListUnassigned(ctx)
}

// AllBugs lists every bug in the system. Admin or Manager.
func (s *Service) AllBugs(ctx context.Context, actor policy.Actor) ([]*Bug, error) {
	if err := policy.Require(actor, policy.ActionViewAllBugs); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx)
}

// AllOpenBugs lists every open bug in the system. Admin or Manager.
func (s *Service) AllOpenBugs(ctx context.Context, actor policy.Actor) ([]*Bug, error) {
	if err := policy.Require(actor, policy.ActionViewAllBugs); err != nil {
		return nil, err
	}
	return s.repo.ListAllOpen(ctx)
}
