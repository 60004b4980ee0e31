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

	"github.com/bugtrail/bugtrail/internal/activity"
)

// ActivityRepository implements activity.Repository
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append inserts an activity entry
func (r *ActivityRepository) Append(ctx context.Context, entry *activity.Entry) error {
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO activity_log (user_id, bug_id, action, description, ts)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		entry.UserID, entry.BugID, entry.Action, entry.Description, entry.Timestamp,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to insert activity entry: %w", err)
	}
	return nil
}

// ListByUser retrieves a user's entries, newest first
func (r *ActivityRepository) ListByUser(ctx context.Context, userID int64) ([]*activity.Entry, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, user_id, bug_id, action, description, ts
		FROM activity_log
		WHERE user_id = $1
		ORDER BY ts DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*activity.Entry, 0)
	for rows.Next() {
		var entry activity.Entry
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.BugID,
			&entry.Action, &entry.Description, &entry.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
