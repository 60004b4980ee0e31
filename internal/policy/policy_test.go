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

package policy_test

import (
	"testing"

	"github.com/bugtrail/bugtrail/internal/policy"
)

// TestPurpose: Validates the coarse role/action permission table across all three roles.
// Scope: Unit Test
// Security: Role-based access control matrix
// Expected: Admin-only actions deny Manager and User; elevated actions deny User; unknown actions deny everyone.
// Test Case ID: POL-01
func TestPolicy_Allows(t *testing.T) {
	cases := []struct {
		action  string
		admin   bool
		manager bool
		user    bool
	}{
		{policy.ActionCreateUser, true, false, false},
		{policy.ActionDeleteUser, true, false, false},
		{policy.ActionViewAllUsers, true, false, false},
		{policy.ActionViewSystemStatistics, true, false, false},
		{policy.ActionCreateProject, true, true, false},
		{policy.ActionUpdateProject, true, true, false},
		{policy.ActionAssignUserToProject, true, true, false},
		{policy.ActionRemoveUserFromProject, true, true, false},
		{policy.ActionViewAllBugs, true, true, false},
		{policy.ActionUpdateAllBugs, true, true, false},
		{"drop_database", false, false, false},
		{"", false, false, false},
	}

	for _, tc := range cases {
		if got := policy.Allows(policy.RoleAdmin, tc.action); got != tc.admin {
			t.Errorf("Allows(Admin, %q) = %v, want %v", tc.action, got, tc.admin)
		}
		if got := policy.Allows(policy.RoleManager, tc.action); got != tc.manager {
			t.Errorf("Allows(Manager, %q) = %v, want %v", tc.action, got, tc.manager)
		}
		if got := policy.Allows(policy.RoleUser, tc.action); got != tc.user {
			t.Errorf("Allows(User, %q) = %v, want %v", tc.action, got, tc.user)
		}
	}
}

func TestPolicy_Require(t *testing.T) {
	admin := policy.Actor{ID: 1, Role: policy.RoleAdmin}
	user := policy.Actor{ID: 2, Role: policy.RoleUser}

	if err := policy.Require(admin, policy.ActionCreateUser); err != nil {
		t.Errorf("expected admin to pass create_user, got %v", err)
	}
	if err := policy.Require(user, policy.ActionCreateUser); err != policy.ErrPermissionDenied {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
}

// TestPurpose: Validates the record-level project visibility rule.
// Scope: Unit Test
// Security: Horizontal access control (project scoping)
// Expected: Elevated roles see any project; a regular user sees only their own assignment; an unassigned user sees nothing.
// Test Case ID: POL-02
func TestPolicy_CanViewProject(t *testing.T) {
	pid := int64(7)

	manager := policy.Actor{ID: 1, Role: policy.RoleManager}
	if !policy.CanViewProject(manager, 99) {
		t.Error("expected manager to view any project")
	}

	assigned := policy.Actor{ID: 2, Role: policy.RoleUser, ProjectID: &pid}
	if !policy.CanViewProject(assigned, 7) {
		t.Error("expected user to view own project")
	}
	if policy.CanViewProject(assigned, 8) {
		t.Error("expected user to be denied another project")
	}

	unassigned := policy.Actor{ID: 3, Role: policy.RoleUser}
	if policy.CanViewProject(unassigned, 7) {
		t.Error("expected unassigned user to be denied")
	}
}

// TestPurpose: Validates the record-level bug mutation rule shared by update, delete and assign.
// Scope: Unit Test
// Security: Record ownership enforcement
// Expected: Elevated roles mutate anything; a regular user mutates only bugs currently assigned to them.
// Test Case ID: POL-03
func TestPolicy_CanMutateBug(t *testing.T) {
	self := int64(5)
	other := int64(6)

	admin := policy.Actor{ID: 1, Role: policy.RoleAdmin}
	if !policy.CanMutateBug(admin, nil) {
		t.Error("expected admin to mutate unassigned bug")
	}

	user := policy.Actor{ID: 5, Role: policy.RoleUser}
	if !policy.CanMutateBug(user, &self) {
		t.Error("expected assignee to mutate own bug")
	}
	if policy.CanMutateBug(user, &other) {
		t.Error("expected non-assignee to be denied")
	}
	if policy.CanMutateBug(user, nil) {
		t.Error("expected regular user to be denied on unassigned bug")
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range []policy.Role{policy.RoleAdmin, policy.RoleManager, policy.RoleUser} {
		if !r.Valid() {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if policy.Role("Root").Valid() {
		t.Error("expected unknown role to be invalid")
	}
	if policy.Role("admin").Valid() {
		t.Error("role comparison must be case sensitive")
	}
}
