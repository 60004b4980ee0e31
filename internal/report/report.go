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

// Package report assembles the dashboard, the activity log view and the
// admin-only system statistics from the other services.
package report

import (
	"context"
	"time"

	"github.com/bugtrail/bugtrail/internal/activity"
	"github.com/bugtrail/bugtrail/internal/bug"
	"github.com/bugtrail/bugtrail/internal/identity"
	"github.com/bugtrail/bugtrail/internal/policy"
	"github.com/bugtrail/bugtrail/internal/project"
)

// StatsRepository exposes the aggregate counts the reports are built
// from.
type StatsRepository interface {
	CountUsers(ctx context.Context) (int, error)
	CountProjects(ctx context.Context) (int, error)
	CountBugs(ctx context.Context) (int, error)
	CountOpenBugs(ctx context.Context) (int, error)
	// CountOverdueBugs counts bugs past their target date that are not
	// resolved. The resolved-not-closed comparison matches the stored
	// data this system inherited.
	CountOverdueBugs(ctx context.Context, now time.Time) (int, error)
	CountUnassignedBugs(ctx context.Context) (int, error)
	CountBugsByProject(ctx context.Context, projectID int64) (int, error)
	CountOpenBugsByProject(ctx context.Context, projectID int64) (int, error)
	CountOverdueBugsByProject(ctx context.Context, projectID int64, now time.Time) (int, error)
}

// SystemStatistics is the admin-only system-wide summary.
type SystemStatistics struct {
	TotalUsers    int `json:"totalUsers"`
	TotalProjects int `json:"totalProjects"`
	TotalBugs     int `json:"totalBugs"`
	OpenBugs      int `json:"openBugs"`
	OverdueBugs   int `json:"overdueBugs"`
}

// UserStatistics is the per-role dashboard summary. Elevated actors get
// system-wide totals plus the unassigned count; regular users get their
// project's totals plus its overdue count.
type UserStatistics struct {
	TotalBugs      int `json:"totalBugs"`
	OpenBugs       int `json:"openBugs"`
	UnassignedBugs int `json:"unassignedBugs,omitempty"`
	OverdueBugs    int `json:"overdueBugs,omitempty"`
}

// Dashboard is the landing view: the account, its visible bugs and
// projects, and the per-role statistics.
type Dashboard struct {
	User       *identity.User
	Bugs       []*bug.Bug
	Projects   []*project.Project
	Statistics UserStatistics
}

// Service builds reports.
type Service struct {
	stats      StatsRepository
	users      identity.UserRepository
	bugs       *bug.Service
	projects   *project.Service
	activities activity.Repository
	now        func() time.Time
}

// NewService creates a new report service.
func NewService(stats StatsRepository, users identity.UserRepository, bugs *bug.Service, projects *project.Service, activities activity.Repository) *Service {
	return &Service{
		stats:      stats,
		users:      users,
		bugs:       bugs,
		projects:   projects,
		activities: activities,
		now:        time.Now,
	}
}

// SystemStatistics returns the system-wide summary. Admin only.
func (s *Service) SystemStatistics(ctx context.Context, actor policy.Actor) (*SystemStatistics, error) {
	if err := policy.Require(actor, policy.ActionViewSystemStatistics); err != nil {
		return nil, err
	}

	var (
		stats SystemStatistics
		err   error
	)
	if stats.TotalUsers, err = s.stats.CountUsers(ctx); err != nil {
		return nil, err
	}
	if stats.TotalProjects, err = s.stats.CountProjects(ctx); err != nil {
		return nil, err
	}
	if stats.TotalBugs, err = s.stats.CountBugs(ctx); err != nil {
		return nil, err
	}
	if stats.OpenBugs, err = s.stats.CountOpenBugs(ctx); err != nil {
		return nil, err
	}
	if stats.OverdueBugs, err = s.stats.CountOverdueBugs(ctx, s.now()); err != nil {
		return nil, err
	}

	return &stats, nil
}

// Dashboard assembles the landing view for the actor.
func (s *Service) Dashboard(ctx context.Context, actor policy.Actor) (*Dashboard, error) {
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	bugs, err := s.bugs.BugsForActor(ctx, actor)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.ListProjects(ctx, actor)
	if err != nil {
		return nil, err
	}
	stats, err := s.userStatistics(ctx, actor)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		User:       user,
		Bugs:       bugs,
		Projects:   projects,
		Statistics: stats,
	}, nil
}

func (s *Service) userStatistics(ctx context.Context, actor policy.Actor) (UserStatistics, error) {
	var (
		stats UserStatistics
		err   error
	)

	if actor.Role.Elevated() {
		if stats.TotalBugs, err = s.stats.CountBugs(ctx); err != nil {
			return stats, err
		}
		if stats.OpenBugs, err = s.stats.CountOpenBugs(ctx); err != nil {
			return stats, err
		}
		if stats.UnassignedBugs, err = s.stats.CountUnassignedBugs(ctx); err != nil {
			return stats, err
		}
		return stats, nil
	}

	if actor.ProjectID == nil {
		return stats, nil
	}

	projectID := *actor.ProjectID
	if stats.TotalBugs, err = s.stats.CountBugsByProject(ctx, projectID); err != nil {
		return stats, err
	}
	if stats.OpenBugs, err = s.stats.CountOpenBugsByProject(ctx, projectID); err != nil {
		return stats, err
	}
	if stats.OverdueBugs, err = s.stats.CountOverdueBugsByProject(ctx, projectID, s.now()); err != nil {
		return stats, err
	}
	return stats, nil
}

// ActivityLog returns the actor's own activity entries, newest first.
func (s *Service) ActivityLog(ctx context.Context, actor policy.Actor) ([]*activity.Entry, error) {
	return s.activities.ListByUser(ctx, actor.ID)
}
