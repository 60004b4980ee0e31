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

	"github.com/bugtrail/bugtrail/internal/identity"
	"github.com/jackc/pgx/v5"
)

// UserRepository implements identity.UserRepository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new account together with its password hash
func (r *UserRepository) Create(ctx context.Context, user *identity.User, passwordHash string) error {
	now := time.Now()
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO users (username, name, email, role, project_id, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		user.Username, user.Name, user.Email, string(user.Role), user.ProjectID,
		passwordHash, now, now,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*identity.User, error) {
	return r.getOne(ctx, `
		SELECT id, username, name, email, role, project_id, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*identity.User, error) {
	return r.getOne(ctx, `
		SELECT id, username, name, email, role, project_id, created_at, updated_at
		FROM users
		WHERE username = $1
	`, username)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*identity.User, error) {
	var user identity.User
	err := r.db.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Name, &user.Email, &user.Role,
		&user.ProjectID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetPasswordHash retrieves the stored hash for verification
func (r *UserRepository) GetPasswordHash(ctx context.Context, userID int64) (string, error) {
	var hash string
	err := r.db.pool.QueryRow(ctx, `
		SELECT password_hash FROM users WHERE id = $1
	`, userID).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", identity.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get password hash: %w", err)
	}
	return hash, nil
}

// Update rewrites the mutable account fields
func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE users SET
			username = $2,
			name = $3,
			email = $4,
			role = $5,
			project_id = $6,
			updated_at = NOW()
		WHERE id = $1
	`,
		user.ID, user.Username, user.Name, user.Email, string(user.Role), user.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}

	return nil
}

// UpdatePassword replaces the stored hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}

	return nil
}

// SetProject assigns or clears the account's project
func (r *UserRepository) SetProject(ctx context.Context, userID int64, projectID *int64) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE users SET project_id = $2, updated_at = NOW()
		WHERE id = $1
	`, userID, projectID)
	if err != nil {
		return fmt.Errorf("failed to set user project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}

	return nil
}

// List retrieves every account ordered by display name
func (r *UserRepository) List(ctx context.Context) ([]*identity.User, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, username, name, email, role, project_id, created_at, updated_at
		FROM users
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*identity.User, 0)
	for rows.Next() {
		var user identity.User
		if err := rows.Scan(
			&user.ID, &user.Username, &user.Name, &user.Email, &user.Role,
			&user.ProjectID, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}

// Delete removes the account record
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM users WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}

	return nil
}

// ClearAssignments nulls the account out as assignee on its bugs
func (r *UserRepository) ClearAssignments(ctx context.Context, userID int64) error {
	_, err := r.db.pool.Exec(ctx, `
		UPDATE bugs SET assigned_to = NULL, status = 1
		WHERE assigned_to = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear bug assignments: %w", err)
	}
	return nil
}
