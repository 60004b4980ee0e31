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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bugtrail/bugtrail/internal/activity"
	"github.com/bugtrail/bugtrail/internal/policy"
	"github.com/bugtrail/bugtrail/internal/validate"
)

// memRepo is a simple in-memory implementation of Repository
type memRepo struct {
	bugs   map[int64]*Bug
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{bugs: make(map[int64]*Bug)}
}

func (m *memRepo) Create(ctx context.Context, b *Bug) error {
	m.nextID++
	b.ID = m.nextID
	cp := *b
	m.bugs[b.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id int64) (*Bug, error) {
	b, ok := m.bugs[id]
	if !ok {
		return nil, ErrBugNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memRepo) Update(ctx context.Context, b *Bug) error {
	if _, ok := m.bugs[b.ID]; !ok {
		return ErrBugNotFound
	}
	cp := *b
	m.bugs[b.ID] = &cp
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.bugs[id]; !ok {
		return ErrBugNotFound
	}
	delete(m.bugs, id)
	return nil
}

func (m *memRepo) SetAssignee(ctx context.Context, bugID int64, userID *int64) error {
	b, ok := m.bugs[bugID]
	if !ok {
		return ErrBugNotFound
	}
	b.AssignedToID = userID
	if userID == nil {
		b.Status = StatusUnassigned
	} else {
		b.Status = StatusAssigned
	}
	return nil
}

func (m *memRepo) Close(ctx context.Context, bugID int64, closedAt time.Time, fixDescription string) error {
	b, ok := m.bugs[bugID]
	if !ok {
		return ErrBugNotFound
	}
	b.Status = StatusClosed
	b.DateClosed = &closedAt
	b.FixDescription = fixDescription
	return nil
}

func (m *memRepo) filter(keep func(*Bug) bool) []*Bug {
	out := make([]*Bug, 0)
	for _, b := range m.bugs {
		if keep(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out
}

func (m *memRepo) ListByProject(ctx context.Context, projectID int64) ([]*Bug, error) {
	return m.filter(func(b *Bug) bool { return b.ProjectID == projectID }), nil
}

func (m *memRepo) ListOpenByProject(ctx context.Context, projectID int64) ([]*Bug, error) {
	return m.filter(func(b *Bug) bool { return b.ProjectID == projectID && b.Status != StatusClosed }), nil
}

func (m *memRepo) ListOverdueByProject(ctx context.Context, projectID int64, now time.Time) ([]*Bug, error) {
	return m.filter(func(b *Bug) bool { return b.ProjectID == projectID && b.Overdue(now) }), nil
}

func (m *memRepo) ListByAssignee(ctx context.Context, userID int64) ([]*Bug, error) {
	return m.filter(func(b *Bug) bool { return b.AssignedToID != nil && *b.AssignedToID == userID }), nil
}

func (m *memRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*Bug, error) {
	return m.filter(func(b *Bug) bool { return b.OwnerID == ownerID }), nil
}

func (m *memRepo) ListUnassigned(ctx context.Context) ([]*Bug, error) {
	return m.filter(func(b *Bug) bool { return b.AssignedToID == nil }), nil
}

func (m *memRepo) ListAll(ctx context.Context) ([]*Bug, error) {
	return m.filter(func(b *Bug) bool { return true }), nil
}

func (m *memRepo) ListAllOpen(ctx context.Context) ([]*Bug, error) {
	return m.filter(func(b *Bug) bool { return b.Status != StatusClosed }), nil
}

type capturingRecorder struct {
	entries []activity.Entry
}

func (r *capturingRecorder) Record(ctx context.Context, entry activity.Entry) {
	r.entries = append(r.entries, entry)
}

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *memRepo, *capturingRecorder) {
	repo := newMemRepo()
	rec := &capturingRecorder{}
	s := NewService(repo, rec)
	s.now = func() time.Time { return fixedNow }
	return s, repo, rec
}

func userActor(id int64, projectID *int64) policy.Actor {
	return policy.Actor{ID: id, Role: policy.RoleUser, ProjectID: projectID}
}

func managerActor() policy.Actor {
	return policy.Actor{ID: 1, Role: policy.RoleManager}
}

func TestBug_CreateBug_Defaults(t *testing.T) {
	s, repo, rec := newTestService()
	ctx := context.Background()

	actor := userActor(9, nil)
	b, err := s.CreateBug(ctx, actor, CreateInput{
		Summary:     "Crash on login",
		Description: "Login crashes when the username is empty",
		ProjectID:   3,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusUnassigned, b.Status)
	assert.Equal(t, PriorityMedium, b.Priority)
	assert.Equal(t, fixedNow, b.DateRaised)
	assert.Equal(t, int64(9), b.OwnerID, "owner must be stamped from the actor")
	assert.Equal(t, int64(9), b.UpdatedBy)

	stored, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Summary, stored.Summary)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, activity.ActionCreateBug, rec.entries[0].Action)
	assert.Equal(t, &b.ID, rec.entries[0].BugID)
}

func TestBug_CreateBug_Validation(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	past := fixedNow.Add(-time.Hour)
	_, err := s.CreateBug(ctx, userActor(9, nil), CreateInput{
		Summary:     "ab",
		Description: "too short",
		ProjectID:   0,
		TargetDate:  &past,
	})

	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 4)
}

func TestBug_UpdateBug_MutationAuthority(t *testing.T) {
	s, repo, _ := newTestService()
	ctx := context.Background()

	assignee := int64(5)
	b := &Bug{
		Summary:      "Crash on login",
		Description:  "Login crashes when the username is empty",
		ProjectID:    3,
		OwnerID:      1,
		AssignedToID: &assignee,
		Status:       StatusAssigned,
		Priority:     PriorityHigh,
		UpdatedBy:    1,
	}
	require.NoError(t, repo.Create(ctx, b))

	in := UpdateInput{
		Summary:      "Crash on login (empty username)",
		Description:  "Login crashes when the username field is empty",
		AssignedToID: &assignee,
		Status:       StatusAssigned,
		Priority:     PriorityCritical,
	}

	// Non-assignee regular user is denied
	err := s.UpdateBug(ctx, userActor(8, nil), b.ID, in)
	assert.ErrorIs(t, err, policy.ErrPermissionDenied)

	// The current assignee may update
	require.NoError(t, s.UpdateBug(ctx, userActor(5, nil), b.ID, in))
	got, _ := repo.GetByID(ctx, b.ID)
	assert.Equal(t, PriorityCritical, got.Priority)
	assert.Equal(t, int64(5), got.UpdatedBy, "updated-by must be stamped from the actor")

	// Elevated roles always may
	require.NoError(t, s.UpdateBug(ctx, managerActor(), b.ID, in))
}

func TestBug_DeleteBug(t *testing.T) {
	s, repo, rec := newTestService()
	ctx := context.Background()

	b := &Bug{Summary: "s", Description: "d", ProjectID: 1, OwnerID: 1, Status: StatusUnassigned, Priority: PriorityLow}
	require.NoError(t, repo.Create(ctx, b))

	err := s.DeleteBug(ctx, userActor(8, nil), b.ID)
	assert.ErrorIs(t, err, policy.ErrPermissionDenied)

	rec.entries = nil
	require.NoError(t, s.DeleteBug(ctx, managerActor(), b.ID))
	_, err = repo.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, ErrBugNotFound)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, activity.ActionDeleteBug, rec.entries[0].Action)
	assert.Nil(t, rec.entries[0].BugID, "deleted bug must not be referenced by the log entry")
}

func TestBug_AssignBug(t *testing.T) {
	s, repo, _ := newTestService()
	ctx := context.Background()

	b := &Bug{Summary: "s", Description: "d", ProjectID: 1, OwnerID: 1, Status: StatusUnassigned}
	require.NoError(t, repo.Create(ctx, b))

	// Regular user cannot assign an unassigned bug
	err := s.AssignBug(ctx, userActor(5, nil), b.ID, 5)
	assert.ErrorIs(t, err, policy.ErrPermissionDenied)

	require.NoError(t, s.AssignBug(ctx, managerActor(), b.ID, 5))
	got, _ := repo.GetByID(ctx, b.ID)
	require.NotNil(t, got.AssignedToID)
	assert.Equal(t, int64(5), *got.AssignedToID)
	assert.Equal(t, StatusAssigned, got.Status)

	// The assignee may now pass the bug along
	require.NoError(t, s.AssignBug(ctx, userActor(5, nil), b.ID, 6))
}

func TestBug_CloseBug_Idempotent(t *testing.T) {
	s, repo, _ := newTestService()
	ctx := context.Background()

	b := &Bug{Summary: "s", Description: "d", ProjectID: 1, OwnerID: 1, Status: StatusAssigned}
	require.NoError(t, repo.Create(ctx, b))

	require.NoError(t, s.CloseBug(ctx, userActor(8, nil), b.ID, "fixed in release 1.2"))
	got, _ := repo.GetByID(ctx, b.ID)
	assert.Equal(t, StatusClosed, got.Status)
	require.NotNil(t, got.DateClosed)
	assert.Equal(t, fixedNow, *got.DateClosed)
	assert.Equal(t, "fixed in release 1.2", got.FixDescription)

	// Closing again re-applies the same state without erroring
	require.NoError(t, s.CloseBug(ctx, userActor(8, nil), b.ID, "fixed in release 1.2"))

	assert.ErrorIs(t, s.CloseBug(ctx, userActor(8, nil), 999, "x"), ErrBugNotFound)
}

func TestBug_BugDetails_Visibility(t *testing.T) {
	s, repo, _ := newTestService()
	ctx := context.Background()

	b := &Bug{Summary: "s", Description: "d", ProjectID: 3, OwnerID: 1}
	require.NoError(t, repo.Create(ctx, b))

	pid := int64(3)
	if _, err := s.BugDetails(ctx, userActor(5, &pid), b.ID); err != nil {
		t.Errorf("expected project member to view, got %v", err)
	}

	other := int64(4)
	_, err := s.BugDetails(ctx, userActor(5, &other), b.ID)
	assert.ErrorIs(t, err, policy.ErrPermissionDenied)

	_, err = s.BugDetails(ctx, userActor(5, nil), b.ID)
	assert.ErrorIs(t, err, policy.ErrPermissionDenied)
}

func TestBug_BugsForActor(t *testing.T) {
	s, repo, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Bug{Summary: "a", Description: "d", ProjectID: 1, OwnerID: 1}))
	require.NoError(t, repo.Create(ctx, &Bug{Summary: "b", Description: "d", ProjectID: 2, OwnerID: 1}))

	all, err := s.BugsForActor(ctx, managerActor())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pid := int64(1)
	scoped, err := s.BugsForActor(ctx, userActor(5, &pid))
	require.NoError(t, err)
	assert.Len(t, scoped, 1)

	none, err := s.BugsForActor(ctx, userActor(5, nil))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBug_AllBugs_RequiresElevation(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	_, err := s.AllBugs(ctx, userActor(5, nil))
	assert.ErrorIs(t, err, policy.ErrPermissionDenied)

	_, err = s.UnassignedBugs(ctx, userActor(5, nil))
	assert.ErrorIs(t, err, policy.ErrPermissionDenied)

	_, err = s.AllOpenBugs(ctx, managerActor())
	assert.NoError(t, err)
}

func TestBug_UnassignedBugs_SelectsOnAssigneeOnly(t *testing.T) {
	s, repo, _ := newTestService()
	ctx := context.Background()

	// A bug closed without ever being assigned stays on the unassigned
	// list; the selection keys on the assignee alone, not the status.
	closedAt := fixedNow
	neverAssigned := &Bug{Summary: "s", Description: "d", ProjectID: 1, OwnerID: 1,
		Status: StatusClosed, DateClosed: &closedAt}
	require.NoError(t, repo.Create(ctx, neverAssigned))

	assignee := int64(5)
	assigned := &Bug{Summary: "s", Description: "d", ProjectID: 1, OwnerID: 1,
		Status: StatusAssigned, AssignedToID: &assignee}
	require.NoError(t, repo.Create(ctx, assigned))

	bugs, err := s.UnassignedBugs(ctx, managerActor())
	require.NoError(t, err)
	require.Len(t, bugs, 1)
	assert.Equal(t, neverAssigned.ID, bugs[0].ID)
}

func TestBug_Overdue(t *testing.T) {
	past := fixedNow.Add(-24 * time.Hour)
	future := fixedNow.Add(24 * time.Hour)

	assert.True(t, (&Bug{TargetDate: &past, Status: StatusAssigned}).Overdue(fixedNow))
	assert.False(t, (&Bug{TargetDate: &past, Status: StatusClosed}).Overdue(fixedNow))
	// A resolved bug past target still counts as overdue
	assert.True(t, (&Bug{TargetDate: &past, Status: StatusResolved}).Overdue(fixedNow))
	assert.False(t, (&Bug{TargetDate: &future, Status: StatusAssigned}).Overdue(fixedNow))
	assert.False(t, (&Bug{Status: StatusAssigned}).Overdue(fixedNow))
}
