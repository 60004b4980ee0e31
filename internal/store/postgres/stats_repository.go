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

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bugtrail/bugtrail/internal/bug"
)

// StatsRepository implements report.StatsRepository
type StatsRepository struct {
	db *DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.db.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return n, nil
}

// CountUsers counts every account
func (r *StatsRepository) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

// CountProjects counts every project
func (r *StatsRepository) CountProjects(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM projects`)
}

// CountBugs counts every bug
func (r *StatsRepository) CountBugs(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM bugs`)
}

// CountOpenBugs counts every bug that is not closed
func (r *StatsRepository) CountOpenBugs(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM bugs WHERE status != $1`, int(bug.StatusClosed))
}

// CountOverdueBugs counts bugs past their target date that are not
// resolved. The resolved-not-closed comparison matches the stored data
// this system inherited.
func (r *StatsRepository) CountOverdueBugs(ctx context.Context, now time.Time) (int, error) {
	return r.count(ctx, `
		SELECT COUNT(*) FROM bugs
		WHERE target_date < $1 AND status != $2
	`, now, int(bug.StatusResolved))
}

// CountUnassignedBugs counts bugs without an assignee. Closed bugs that
// were never assigned stay in the count.
func (r *StatsRepository) CountUnassignedBugs(ctx context.Context) (int, error) {
	return r.count(ctx, `
		SELECT COUNT(*) FROM bugs
		WHERE assigned_to IS NULL
	`)
}

// CountBugsByProject counts a project's bugs
func (r *StatsRepository) CountBugsByProject(ctx context.Context, projectID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM bugs WHERE project_id = $1`, projectID)
}

// CountOpenBugsByProject counts a project's open bugs
func (r *StatsRepository) CountOpenBugsByProject(ctx context.Context, projectID int64) (int, error) {
	return r.count(ctx, `
		SELECT COUNT(*) FROM bugs
		WHERE project_id = $1 AND status != $2
	`, projectID, int(bug.StatusClosed))
}

// CountOverdueBugsByProject counts a project's bugs past their target
// date that are not closed
func (r *StatsRepository) CountOverdueBugsByProject(ctx context.Context, projectID int64, now time.Time) (int, error) {
	return r.count(ctx, `
		SELECT COUNT(*) FROM bugs
		WHERE project_id = $1 AND target_date < $2 AND status != $3
	`, projectID, now, int(bug.StatusClosed))
}
