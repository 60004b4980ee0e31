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

package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bugtrail/bugtrail/internal/activity"
	"github.com/bugtrail/bugtrail/internal/bug"
	"github.com/bugtrail/bugtrail/internal/identity"
	"github.com/bugtrail/bugtrail/internal/policy"
	"github.com/bugtrail/bugtrail/internal/project"
)

// mockStats returns canned counts
type mockStats struct {
	users, projects, bugs, open, overdue, unassigned int
	byProject, openByProject, overdueByProject       int
}

func (m *mockStats) CountUsers(ctx context.Context) (int, error)    { return m.users, nil }
func (m *mockStats) CountProjects(ctx context.Context) (int, error) { return m.projects, nil }
func (m *mockStats) CountBugs(ctx context.Context) (int, error)     { return m.bugs, nil }
func (m *mockStats) CountOpenBugs(ctx context.Context) (int, error) { return m.open, nil }
func (m *mockStats) CountOverdueBugs(ctx context.Context, now time.Time) (int, error) {
	return m.overdue, nil
}
func (m *mockStats) CountUnassignedBugs(ctx context.Context) (int, error) { return m.unassigned, nil }
func (m *mockStats) CountBugsByProject(ctx context.Context, projectID int64) (int, error) {
	return m.byProject, nil
}
func (m *mockStats) CountOpenBugsByProject(ctx context.Context, projectID int64) (int, error) {
	return m.openByProject, nil
}
func (m *mockStats) CountOverdueBugsByProject(ctx context.Context, projectID int64, now time.Time) (int, error) {
	return m.overdueByProject, nil
}

// Interface-embedding stubs: only the methods the dashboard touches are
// implemented, anything else panics loudly in the test.

type stubUsers struct {
	identity.UserRepository
	user *identity.User
}

func (s *stubUsers) GetByID(ctx context.Context, id int64) (*identity.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, identity.ErrUserNotFound
}

type stubBugRepo struct {
	bug.Repository
	all       []*bug.Bug
	byProject []*bug.Bug
}

func (s *stubBugRepo) ListAll(ctx context.Context) ([]*bug.Bug, error) { return s.all, nil }
func (s *stubBugRepo) ListByProject(ctx context.Context, projectID int64) ([]*bug.Bug, error) {
	return s.byProject, nil
}

type stubProjectRepo struct {
	project.Repository
	projects map[int64]*project.Project
}

func (s *stubProjectRepo) List(ctx context.Context) ([]*project.Project, error) {
	out := make([]*project.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubProjectRepo) GetByID(ctx context.Context, id int64) (*project.Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	return p, nil
}

type stubActivity struct {
	entries []*activity.Entry
}

func (s *stubActivity) Append(ctx context.Context, entry *activity.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubActivity) ListByUser(ctx context.Context, userID int64) ([]*activity.Entry, error) {
	out := make([]*activity.Entry, 0)
	for _, e := range s.entries {
		if e.UserID != nil && *e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestService(stats *mockStats, user *identity.User, acts *stubActivity) *Service {
	rec := activity.NewSlogRecorder()
	bugs := bug.NewService(&stubBugRepo{}, rec)
	projects := project.NewService(
		&stubProjectRepo{projects: map[int64]*project.Project{1: {ID: 1, Name: "Apollo"}}},
		&stubUsers{user: user},
		rec,
	)
	if acts == nil {
		acts = &stubActivity{}
	}
	return NewService(stats, &stubUsers{user: user}, bugs, projects, acts)
}

func TestReport_SystemStatistics_AdminOnly(t *testing.T) {
	stats := &mockStats{users: 4, projects: 2, bugs: 30, open: 12, overdue: 3}
	s := newTestService(stats, nil, nil)
	ctx := context.Background()

	_, err := s.SystemStatistics(ctx, policy.Actor{ID: 2, Role: policy.RoleManager})
	assert.ErrorIs(t, err, policy.ErrPermissionDenied)

	got, err := s.SystemStatistics(ctx, policy.Actor{ID: 1, Role: policy.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, &SystemStatistics{
		TotalUsers:    4,
		TotalProjects: 2,
		TotalBugs:     30,
		OpenBugs:      12,
		OverdueBugs:   3,
	}, got)
}

func TestReport_Dashboard_ElevatedStats(t *testing.T) {
	stats := &mockStats{bugs: 30, open: 12, unassigned: 5}
	admin := &identity.User{ID: 1, Username: "root", Role: policy.RoleAdmin}
	s := newTestService(stats, admin, nil)

	dash, err := s.Dashboard(context.Background(), admin.Actor())
	require.NoError(t, err)

	assert.Equal(t, admin, dash.User)
	assert.Equal(t, 30, dash.Statistics.TotalBugs)
	assert.Equal(t, 12, dash.Statistics.OpenBugs)
	assert.Equal(t, 5, dash.Statistics.UnassignedBugs)
	assert.Zero(t, dash.Statistics.OverdueBugs, "elevated dashboards carry no overdue count")
}

func TestReport_Dashboard_ProjectScopedStats(t *testing.T) {
	stats := &mockStats{byProject: 7, openByProject: 4, overdueByProject: 2}
	pid := int64(1)
	user := &identity.User{ID: 5, Username: "jdoe", Role: policy.RoleUser, ProjectID: &pid}
	s := newTestService(stats, user, nil)

	dash, err := s.Dashboard(context.Background(), user.Actor())
	require.NoError(t, err)

	assert.Equal(t, 7, dash.Statistics.TotalBugs)
	assert.Equal(t, 4, dash.Statistics.OpenBugs)
	assert.Equal(t, 2, dash.Statistics.OverdueBugs)
	assert.Zero(t, dash.Statistics.UnassignedBugs)
}

func TestReport_Dashboard_UnassignedUser(t *testing.T) {
	user := &identity.User{ID: 5, Username: "jdoe", Role: policy.RoleUser}
	s := newTestService(&mockStats{}, user, nil)

	dash, err := s.Dashboard(context.Background(), user.Actor())
	require.NoError(t, err)

	assert.Empty(t, dash.Bugs)
	assert.Empty(t, dash.Projects)
	assert.Zero(t, dash.Statistics)
}

func TestReport_ActivityLog_OwnEntriesOnly(t *testing.T) {
	self := int64(5)
	other := int64(6)
	acts := &stubActivity{entries: []*activity.Entry{
		{ID: 1, UserID: &self, Action: activity.ActionLogin},
		{ID: 2, UserID: &other, Action: activity.ActionLogin},
		{ID: 3, UserID: &self, Action: activity.ActionCreateBug},
	}}
	s := newTestService(&mockStats{}, nil, acts)

	entries, err := s.ActivityLog(context.Background(), policy.Actor{ID: self, Role: policy.RoleUser})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, self, *e.UserID)
	}
}
