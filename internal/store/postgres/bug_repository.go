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
	"errors"
	"fmt"
	"time"

	"github.com/bugtrail/bugtrail/internal/bug"
	"github.com/jackc/pgx/v5"
)

// selectBug joins the display names every list view needs. Owner and
// updater references null out when the account is deleted; they surface
// as zero IDs and empty names.
const selectBug = `
	SELECT b.id, b.summary, b.description, b.project_id,
		COALESCE(b.owner_id, 0), b.assigned_to,
		b.status, b.priority, b.target_date, b.date_raised, b.date_closed,
		b.fix_description, COALESCE(b.updated_by, 0),
		p.name, COALESCE(o.name, ''), COALESCE(a.name, '')
	FROM bugs b
	JOIN projects p ON p.id = b.project_id
	LEFT JOIN users o ON o.id = b.owner_id
	LEFT JOIN users a ON a.id = b.assigned_to
`

// BugRepository implements bug.Repository
type BugRepository struct {
	db *DB
}

// NewBugRepository creates a new bug repository
func NewBugRepository(db *DB) *BugRepository {
	return &BugRepository{db: db}
}

// Create inserts a new bug
func (r *BugRepository) Create(ctx context.Context, b *bug.Bug) error {
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO bugs (
			summary, description, project_id, owner_id, assigned_to,
			status, priority, target_date, date_raised, fix_description, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`,
		b.Summary, b.Description, b.ProjectID, b.OwnerID, b.AssignedToID,
		int(b.Status), int(b.Priority), b.TargetDate, b.DateRaised,
		b.FixDescription, b.UpdatedBy,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("failed to insert bug: %w", err)
	}
	return nil
}

// GetByID retrieves a bug by ID
func (r *BugRepository) GetByID(ctx context.Context, id int64) (*bug.Bug, error) {
	row := r.db.pool.QueryRow(ctx, selectBug+` WHERE b.id = $1`, id)

	b, err := scanBug(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bug.ErrBugNotFound
		}
		return nil, fmt.Errorf("failed to get bug: %w", err)
	}
	return b, nil
}

// Update rewrites the mutable subset. The project reference is never
// touched.
func (r *BugRepository) Update(ctx context.Context, b *bug.Bug) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE bugs SET
			summary = $2,
			description = $3,
			assigned_to = $4,
			status = $5,
			priority = $6,
			target_date = $7,
			fix_description = $8,
			updated_by = $9
		WHERE id = $1
	`,
		b.ID, b.Summary, b.Description, b.AssignedToID,
		int(b.Status), int(b.Priority), b.TargetDate, b.FixDescription, b.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update bug: %w", err)
	}

	if result.RowsAffected() == 0 {
		return bug.ErrBugNotFound
	}

	return nil
}

// Delete removes the bug. Its activity rows go with it via the schema
// cascade.
func (r *BugRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM bugs WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bug: %w", err)
	}

	if result.RowsAffected() == 0 {
		return bug.ErrBugNotFound
	}

	return nil
}

// SetAssignee assigns or clears the bug's assignee, moving the status
// between Assigned and Unassigned to match.
func (r *BugRepository) SetAssignee(ctx context.Context, bugID int64, userID *int64) error {
	status := int(bug.StatusUnassigned)
	if userID != nil {
		status = int(bug.StatusAssigned)
	}

	result, err := r.db.pool.Exec(ctx, `
		UPDATE bugs SET assigned_to = $2, status = $3
		WHERE id = $1
	`, bugID, userID, status)
	if err != nil {
		return fmt.Errorf("failed to set bug assignee: %w", err)
	}

	if result.RowsAffected() == 0 {
		return bug.ErrBugNotFound
	}

	return nil
}

// Close marks the bug closed, stamping the close time and fix text
func (r *BugRepository) Close(ctx context.Context, bugID int64, closedAt time.Time, fixDescription string) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE bugs SET status = $2, date_closed = $3, fix_description = $4
		WHERE id = $1
	`, bugID, int(bug.StatusClosed), closedAt, fixDescription)
	if err != nil {
		return fmt.Errorf("failed to close bug: %w", err)
	}

	if result.RowsAffected() == 0 {
		return bug.ErrBugNotFound
	}

	return nil
}

// ListByProject retrieves a project's bugs, newest raised first
func (r *BugRepository) ListByProject(ctx context.Context, projectID int64) ([]*bug.Bug, error) {
	return r.list(ctx, selectBug+`
		WHERE b.project_id = $1
		ORDER BY b.date_raised DESC
	`, projectID)
}

// ListOpenByProject retrieves a project's open bugs, newest raised first
func (r *BugRepository) ListOpenByProject(ctx context.Context, projectID int64) ([]*bug.Bug, error) {
	return r.list(ctx, selectBug+`
		WHERE b.project_id = $1 AND b.status != $2
		ORDER BY b.date_raised DESC
	`, projectID, int(bug.StatusClosed))
}

// ListOverdueByProject retrieves a project's overdue bugs, most overdue
// first
func (r *BugRepository) ListOverdueByProject(ctx context.Context, projectID int64, now time.Time) ([]*bug.Bug, error) {
	return r.list(ctx, selectBug+`
		WHERE b.project_id = $1 AND b.target_date < $2 AND b.status != $3
		ORDER BY b.target_date
	`, projectID, now, int(bug.StatusClosed))
}

// ListByAssignee retrieves the bugs assigned to a user
func (r *BugRepository) ListByAssignee(ctx context.Context, userID int64) ([]*bug.Bug, error) {
	return r.list(ctx, selectBug+`
		WHERE b.assigned_to = $1
		ORDER BY b.date_raised DESC
	`, userID)
}

// ListByOwner retrieves the bugs a user raised
func (r *BugRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*bug.Bug, error) {
	return r.list(ctx, selectBug+`
		WHERE b.owner_id = $1
		ORDER BY b.date_raised DESC
	`, ownerID)
}

// ListUnassigned retrieves every bug without an assignee, closed or not
func (r *BugRepository) ListUnassigned(ctx context.Context) ([]*bug.Bug, error) {
	return r.list(ctx, selectBug+`
		WHERE b.assigned_to IS NULL
		ORDER BY b.date_raised DESC
	`)
}

// ListAll retrieves every bug, newest raised first
func (r *BugRepository) ListAll(ctx context.Context) ([]*bug.Bug, error) {
	return r.list(ctx, selectBug+` ORDER BY b.date_raised DESC`)
}

// ListAllOpen retrieves every open bug, newest raised first
func (r *BugRepository) ListAllOpen(ctx context.Context) ([]*bug.Bug, error) {
	return r.list(ctx, selectBug+`
		WHERE b.status != $1
		ORDER BY b.date_raised DESC
	`, int(bug.StatusClosed))
}

func (r *BugRepository) list(ctx context.Context, query string, args ...any) ([]*bug.Bug, error) {
	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bugs: %w", err)
	}
	defer rows.Close()

	bugs := make([]*bug.Bug, 0)
	for rows.Next() {
		b, err := scanBug(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bug: %w", err)
		}
		bugs = append(bugs, b)
	}

	return bugs, rows.Err()
}

func scanBug(row pgx.Row) (*bug.Bug, error) {
	var b bug.Bug
	err := row.Scan(
		&b.ID, &b.Summary, &b.Description, &b.ProjectID, &b.OwnerID, &b.AssignedToID,
		&b.Status, &b.Priority, &b.TargetDate, &b.DateRaised, &b.DateClosed,
		&b.FixDescription, &b.UpdatedBy,
		&b.ProjectName, &b.OwnerName, &b.AssignedName,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
