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
	"errors"
	"time"
)

// Domain errors
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrAlreadyAssigned = errors.New("user is already assigned to another project")
	ErrNotAssigned     = errors.New("user is not assigned to this project")
)

// Project represents a project bugs are scoped to. A description is
// required on create/update but deliberately not persisted; the stored
// schema carries only the name.
type Project struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines the interface for project persistence.
type Repository interface {
	// Create inserts a new project and fills in the generated ID.
	Create(ctx context.Context, project *Project) error

	// GetByID retrieves a project by ID.
	GetByID(ctx context.Context, id int64) (*Project, error)

	// Update renames a project.
	Update(ctx context.Context, project *Project) error

	// List retrieves every project ordered by name.
	List(ctx context.Context) ([]*Project, error)
}
