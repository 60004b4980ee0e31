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

	"github.com/bugtrail/bugtrail/internal/project"
	"github.com/jackc/pgx/v5"
)

// ProjectRepository implements project.Repository
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project
func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	now := time.Now()
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO projects (name, created_at, updated_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, p.Name, now, now).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	p.CreatedAt = now
	p.UpdatedAt = now

	return nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*project.Project, error) {
	var p project.Project
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at
		FROM projects
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// Update renames a project
func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE projects SET name = $2, updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Name)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}

	return nil
}

// List retrieves every project ordered by name
func (r *ProjectRepository) List(ctx context.Context) ([]*project.Project, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name, created_at, updated_at
		FROM projects
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*project.Project, 0)
	for rows.Next() {
		var p project.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &p)
	}

	return projects, rows.Err()
}
