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

package policy

import "errors"

// ErrPermissionDenied is returned whenever an actor is authenticated but
// not authorized for an action or a specific record.
var ErrPermissionDenied = errors.New("permission denied")

// Role is the closed set of roles a user account can hold.
// Exactly one role per account.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleUser    Role = "User"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleUser
}

// Elevated reports whether the role carries manager-or-above privileges.
// Elevated actors see every project and mutate every bug.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleManager
}

// Actor is the authenticated identity executing a use case. It is
// threaded explicitly as a parameter into every service call, never held
// in ambient state.
type Actor struct {
	ID        int64
	Name      string
	Role      Role
	ProjectID *int64 // nil unless a regular user is assigned to a project
}

// Action tags for coarse (role-only) permission checks. These mirror the
// inbound action names one-to-one.
const (
	ActionCreateUser            = "create_user"
	ActionDeleteUser            = "delete_user"
	ActionViewAllUsers          = "view_all_users"
	ActionViewSystemStatistics  = "view_system_statistics"
	ActionCreateProject         = "create_project"
	ActionUpdateProject         = "update_project"
	ActionAssignUserToProject   = "assign_user_to_project"
	ActionRemoveUserFromProject = "remove_user_from_project"
	ActionViewAllBugs           = "view_all_bugs"
	ActionUpdateAllBugs         = "update_all_bugs"
)

// Allows is the coarse action-level permission table. It is a pure
// function of (role, action); record-level rules live beside the data
// they inspect. Unknown actions deny.
func Allows(role Role, action string) bool {
	switch action {
	case ActionCreateUser, ActionDeleteUser, ActionViewAllUsers, ActionViewSystemStatistics:
		return role == RoleAdmin

	case ActionCreateProject, ActionUpdateProject,
		ActionAssignUserToProject, ActionRemoveUserFromProject:
		return role.Elevated()

	case ActionViewAllBugs, ActionUpdateAllBugs:
		return role.Elevated()

	default:
		return false
	}
}

// Require returns ErrPermissionDenied unless the actor's role allows the
// action.
func Require(actor Actor, action string) error {
	if !Allows(actor.Role, action) {
		return ErrPermissionDenied
	}
	return nil
}

// CanViewProject is the record-level visibility rule: elevated actors see
// every project, regular users only their own assignment.
func CanViewProject(actor Actor, projectID int64) bool {
	if actor.Role.Elevated() {
		return true
	}
	return actor.ProjectID != nil && *actor.ProjectID == projectID
}

// CanMutateBug is the record-level mutation rule shared by bug update,
// delete and assign: elevated actors always, regular users only when they
// are the bug's current assignee.
func CanMutateBug(actor Actor, assignedToID *int64) bool {
	if actor.Role.Elevated() {
		return true
	}
	return assignedToID != nil && *assignedToID == actor.ID
}
