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

package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/bugtrail/bugtrail/internal/activity"
	"github.com/bugtrail/bugtrail/internal/policy"
	"github.com/bugtrail/bugtrail/internal/validate"
)

// MockUserRepository is a simple in-memory implementation of UserRepository
type MockUserRepository struct {
	users  map[int64]*User
	hashes map[int64]string
	nextID int64
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*User),
		hashes: make(map[int64]string),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *User, passwordHash string) error {
	m.nextID++
	user.ID = m.nextID
	m.users[user.ID] = user
	m.hashes[user.ID] = passwordHash
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockUserRepository) GetPasswordHash(ctx context.Context, userID int64) (string, error) {
	h, ok := m.hashes[userID]
	if !ok {
		return "", ErrUserNotFound
	}
	return h, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *User) error {
	if _, ok := m.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	if _, ok := m.hashes[userID]; !ok {
		return ErrUserNotFound
	}
	m.hashes[userID] = passwordHash
	return nil
}

func (m *MockUserRepository) SetProject(ctx context.Context, userID int64, projectID *int64) error {
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.ProjectID = projectID
	return nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]*User, error) {
	out := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	delete(m.hashes, id)
	return nil
}

func (m *MockUserRepository) ClearAssignments(ctx context.Context, userID int64) error {
	return nil
}

// capturingRecorder keeps every recorded entry for assertions
type capturingRecorder struct {
	entries []activity.Entry
}

func (r *capturingRecorder) Record(ctx context.Context, entry activity.Entry) {
	r.entries = append(r.entries, entry)
}

func newTestService() (*Service, *MockUserRepository, *capturingRecorder) {
	repo := NewMockUserRepository()
	rec := &capturingRecorder{}
	hasher := NewPasswordHasher(65536, 3, 4, 16, 32)
	return NewService(repo, hasher, rec), repo, rec
}

func adminActor() policy.Actor {
	return policy.Actor{ID: 1, Name: "Admin", Role: policy.RoleAdmin}
}

func mustCreateUser(t *testing.T, s *Service, in CreateUserInput) *User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), adminActor(), in)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return u
}

// TestPurpose: Validates the username/password authentication flow.
// Scope: Unit Test
// Security: Authentication mechanisms
// Expected: Successful login for correct credentials; indistinguishable ErrInvalidCredentials for unknown usernames and wrong passwords; successful logins leave an activity entry, failed attempts none.
// Test Case ID: IDN-01
func TestIdentity_Service_Authenticate(t *testing.T) {
	s, _, rec := newTestService()
	ctx := context.Background()

	mustCreateUser(t, s, CreateUserInput{
		Username: "jdoe",
		Name:     "Jane Doe",
		Email:    "jdoe@example.com",
		Password: "SecurePassword123",
		Role:     policy.RoleUser,
	})
	rec.entries = nil

	user, err := s.Authenticate(ctx, "jdoe", "SecurePassword123")
	if err != nil {
		t.Fatalf("expected success, got err: %v", err)
	}
	if user.Username != "jdoe" {
		t.Errorf("expected username jdoe, got %s", user.Username)
	}
	if len(rec.entries) != 1 || rec.entries[0].Action != activity.ActionLogin {
		t.Errorf("expected one LOGIN entry, got %+v", rec.entries)
	}

	rec.entries = nil
	if _, err := s.Authenticate(ctx, "jdoe", "WrongPassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := s.Authenticate(ctx, "ghost", "SecurePassword123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown username, got %v", err)
	}
	if len(rec.entries) != 0 {
		t.Errorf("failed attempts must not be recorded, got %+v", rec.entries)
	}
}

// TestPurpose: Validates that only Admins can create accounts and that duplicate usernames are rejected.
// Scope: Unit Test
// Security: Privileged account provisioning
// Expected: ErrPermissionDenied for non-admin actors; ErrUsernameTaken on duplicate username; validation errors for malformed input.
// Test Case ID: IDN-02
func TestIdentity_Service_CreateUser(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	in := CreateUserInput{
		Username: "jdoe",
		Name:     "Jane Doe",
		Email:    "jdoe@example.com",
		Password: "secret99",
		Role:     policy.RoleUser,
	}

	manager := policy.Actor{ID: 2, Role: policy.RoleManager}
	if _, err := s.CreateUser(ctx, manager, in); !errors.Is(err, policy.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied for manager, got %v", err)
	}

	if _, err := s.CreateUser(ctx, adminActor(), in); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if _, err := s.CreateUser(ctx, adminActor(), in); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}

	var verr *validate.Error
	_, err := s.CreateUser(ctx, adminActor(), CreateUserInput{
		Username: "ab",
		Email:    "not-an-email",
		Password: "short",
		Role:     policy.Role("Root"),
	})
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields) != 5 {
		t.Errorf("expected 5 accumulated failures, got %d: %v", len(verr.Fields), verr.Fields)
	}
}

// TestPurpose: Validates the self-or-admin update rule and that privileged fields are silently ignored for non-admins.
// Scope: Unit Test
// Security: Vertical privilege escalation prevention
// Expected: A user updating their own account cannot change role or project; those fields keep their stored values without an error.
// Test Case ID: IDN-03
func TestIdentity_Service_UpdateUser_RoleIgnoredForSelf(t *testing.T) {
	s, repo, _ := newTestService()
	ctx := context.Background()

	u := mustCreateUser(t, s, CreateUserInput{
		Username: "jdoe",
		Name:     "Jane Doe",
		Email:    "jdoe@example.com",
		Password: "secret99",
		Role:     policy.RoleUser,
	})

	pid := int64(3)
	err := s.UpdateUser(ctx, u.Actor(), u.ID, UpdateUserInput{
		Username:   "jdoe",
		Name:       "Jane D.",
		Role:       policy.RoleAdmin,
		ProjectID:  &pid,
		ProjectSet: true,
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	got, _ := repo.GetByID(ctx, u.ID)
	if got.Role != policy.RoleUser {
		t.Errorf("role must not be self-escalatable, got %s", got.Role)
	}
	if got.ProjectID != nil {
		t.Errorf("project must not be self-assignable, got %v", *got.ProjectID)
	}
	if got.Name != "Jane D." {
		t.Errorf("expected name update to apply, got %s", got.Name)
	}

	// Another regular user may not touch the account at all
	stranger := policy.Actor{ID: 99, Role: policy.RoleUser}
	err = s.UpdateUser(ctx, stranger, u.ID, UpdateUserInput{Username: "jdoe", Name: "X"})
	if !errors.Is(err, policy.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
}

// TestPurpose: Validates account deletion and its cascade ordering.
// Scope: Unit Test
// Security: Privileged account removal
// Expected: Admin-only; bug assignments and the project link are cleared before the record goes away; the deletion is recorded.
// Test Case ID: IDN-04
func TestIdentity_Service_DeleteUser(t *testing.T) {
	s, repo, rec := newTestService()
	ctx := context.Background()

	u := mustCreateUser(t, s, CreateUserInput{
		Username: "jdoe",
		Name:     "Jane Doe",
		Email:    "jdoe@example.com",
		Password: "secret99",
		Role:     policy.RoleUser,
	})

	user := policy.Actor{ID: 50, Role: policy.RoleUser}
	if err := s.DeleteUser(ctx, user, u.ID); !errors.Is(err, policy.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}

	rec.entries = nil
	if err := s.DeleteUser(ctx, adminActor(), u.ID); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if _, err := repo.GetByID(ctx, u.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected account to be gone, got %v", err)
	}
	if len(rec.entries) != 1 || rec.entries[0].Action != activity.ActionDeleteUser {
		t.Errorf("expected one DELETE_USER entry, got %+v", rec.entries)
	}
}

func TestIdentity_Service_UserDetails(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	u := mustCreateUser(t, s, CreateUserInput{
		Username: "jdoe",
		Name:     "Jane Doe",
		Email:    "jdoe@example.com",
		Password: "secret99",
		Role:     policy.RoleUser,
	})

	if _, err := s.UserDetails(ctx, u.Actor(), u.ID); err != nil {
		t.Errorf("expected self lookup to succeed, got %v", err)
	}
	if _, err := s.UserDetails(ctx, adminActor(), u.ID); err != nil {
		t.Errorf("expected admin lookup to succeed, got %v", err)
	}

	other := policy.Actor{ID: 77, Role: policy.RoleManager}
	if _, err := s.UserDetails(ctx, other, u.ID); !errors.Is(err, policy.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied for manager, got %v", err)
	}
}
