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
	"errors"
	"time"
)

// Domain errors
var ErrBugNotFound = errors.New("bug not found")

// Status enumerates the bug lifecycle states. The numeric values are part
// of the stored data and must not change.
type Status int

const (
	StatusUnassigned Status = 1
	StatusAssigned   Status = 2
	StatusClosed     Status = 3
	StatusResolved   Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusUnassigned:
		return "Unassigned"
	case StatusAssigned:
		return "Assigned"
	case StatusClosed:
		return "Closed"
	case StatusResolved:
		return "Resolved"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	return s >= StatusUnassigned && s <= StatusResolved
}

// Priority enumerates bug priorities. Medium is the creation default.
type Priority int

const (
	PriorityLow      Priority = 1
	PriorityMedium   Priority = 2
	PriorityHigh     Priority = 3
	PriorityCritical Priority = 4
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityCritical
}

// Bug represents one tracked defect. ProjectID is immutable after
// creation; OwnerID and UpdatedBy are always stamped server-side from the
// acting user, never taken from the client. Both become zero once the
// referenced account has been deleted; the bug itself survives.
type Bug struct {
	ID             int64
	Summary        string
	Description    string
	ProjectID      int64
	OwnerID        int64
	AssignedToID   *int64
	Status         Status
	Priority       Priority
	TargetDate     *time.Time
	DateRaised     time.Time
	DateClosed     *time.Time
	FixDescription string
	UpdatedBy      int64

	// Display names resolved by list queries; empty on plain loads.
	ProjectName  string
	OwnerName    string
	AssignedName string
}

// Overdue reports whether the bug is past its target date and still open.
func (b *Bug) Overdue(now time.Time) bool {
	return b.TargetDate != nil && b.TargetDate.Before(now) && b.Status != StatusClosed
}

// Repository defines the interface for bug persistence. Mutating calls
// return ErrBugNotFound when zero rows were affected so callers can
// report failure without logging a phantom activity entry.
type Repository interface {
	// Create inserts a new bug and fills in the generated ID.
	Create(ctx context.Context, b *Bug) error

	// GetByID retrieves a bug by ID.
	GetByID(ctx context.Context, id int64) (*Bug, error)

	// Update rewrites the mutable subset (summary, description,
	// assignee, status, priority, target date, updated-by). The project
	// reference is never touched.
	Update(ctx context.Context, b *Bug) error

	// Delete removes the bug and its activity rows.
	Delete(ctx context.Context, id int64) error

	// SetAssignee assigns (or clears, with nil) the bug's assignee.
	SetAssignee(ctx context.Context, bugID int64, userID *int64) error

	// Close marks the bug closed, stamping the close time and fix text.
	Close(ctx context.Context, bugID int64, closedAt time.Time, fixDescription string) error

	// List queries, newest raised first unless noted.
	ListByProject(ctx context.Context, projectID int64) ([]*Bug, error)
	ListOpenByProject(ctx context.Context, projectID int64) ([]*Bug, error)
	// ListOverdueByProject orders by target date, most overdue first.
	ListOverdueByProject(ctx context.Context, projectID int64, now time.Time) ([]*Bug, error)
	ListByAssignee(ctx context.Context, userID int64) ([]*Bug, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*Bug, error)
	ListUnassigned(ctx context.Context) ([]*Bug, error)
	ListAll(ctx context.Context) ([]*Bug, error)
	ListAllOpen(ctx context.Context) ([]*Bug, error)
}
