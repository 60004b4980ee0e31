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

package activity

import (
	"context"
	"log/slog"
	"time"
)

// Action tags. Free-form string constants written verbatim to the log.
const (
	ActionLogin             = "LOGIN"
	ActionLogout            = "LOGOUT"
	ActionCreateBug         = "CREATE_BUG"
	ActionUpdateBug         = "UPDATE_BUG"
	ActionDeleteBug         = "DELETE_BUG"
	ActionAssignBug         = "ASSIGN_BUG"
	ActionUnassignBug       = "UNASSIGN_BUG"
	ActionCloseBug          = "CLOSE_BUG"
	ActionCreateUser        = "CREATE_USER"
	ActionUpdateUser        = "UPDATE_USER"
	ActionDeleteUser        = "DELETE_USER"
	ActionCreateProject     = "CREATE_PROJECT"
	ActionUpdateProject     = "UPDATE_PROJECT"
	ActionAssignToProject   = "ASSIGN_USER_TO_PROJECT"
	ActionRemoveFromProject = "REMOVE_USER_FROM_PROJECT"
)

// Entry is one append-only activity record. Entries are never mutated or
// deleted (bug deletion removes that bug's rows as part of the cascade).
type Entry struct {
	ID          int64
	UserID      *int64 // acting user; nil for system-initiated writes
	BugID       *int64 // set only for bug-scoped actions
	Action      string
	Description string
	Timestamp   time.Time
}

// Recorder appends activity entries. Recording is fire-and-forget: a
// failed append must never fail the operation that produced it.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// Repository is the persistence interface for activity entries.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	ListByUser(ctx context.Context, userID int64) ([]*Entry, error)
}

// StoreRecorder persists entries through a Repository, swallowing and
// logging append failures.
type StoreRecorder struct {
	repo Repository
}

// NewStoreRecorder creates a store-backed recorder.
func NewStoreRecorder(repo Repository) *StoreRecorder {
	return &StoreRecorder{repo: repo}
}

// Record appends the entry, stamping the timestamp when unset.
func (r *StoreRecorder) Record(ctx context.Context, entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := r.repo.Append(ctx, &entry); err != nil {
		slog.ErrorContext(ctx, "failed to append activity entry",
			slog.String("action", entry.Action),
			slog.String("error", err.Error()),
		)
	}
}

// SlogRecorder writes entries to the structured log only. Used in tests
// and as a fallback when the store is unavailable.
type SlogRecorder struct{}

// NewSlogRecorder creates a log-only recorder.
func NewSlogRecorder() *SlogRecorder {
	return &SlogRecorder{}
}

// Record logs the entry at INFO.
func (r *SlogRecorder) Record(ctx context.Context, entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	attrs := []any{
		slog.String("action", entry.Action),
		slog.String("description", entry.Description),
		slog.Time("timestamp", entry.Timestamp),
	}
	if entry.UserID != nil {
		attrs = append(attrs, slog.Int64("user_id", *entry.UserID))
	}
	if entry.BugID != nil {
		attrs = append(attrs, slog.Int64("bug_id", *entry.BugID))
	}
	slog.InfoContext(ctx, "ACTIVITY", append(attrs, slog.String("component", "activity"))...)
}
