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

package http

import (
	"encoding/json"
	"net/http"

	"github.com/bugtrail/bugtrail/internal/identity"
	"github.com/bugtrail/bugtrail/internal/policy"
)

// CreateUserRequest represents account creation data
type CreateUserRequest struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	ProjectID *int64 `json:"projectId"`
}

// CreateUser creates a new account. Admin only.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.identity.CreateUser(r.Context(), actor, identity.CreateUserInput{
		Username:  sanitize(req.Username),
		Name:      sanitize(req.Name),
		Email:     sanitize(req.Email),
		Password:  req.Password,
		Role:      policy.Role(req.Role),
		ProjectID: req.ProjectID,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusCreated, map[string]any{
		"user": userView(user),
	})
}

// UpdateUserRequest represents account update data. The project field is
// applied only when present in the payload, so "clear my project" and
// "leave it alone" stay distinguishable.
type UpdateUserRequest struct {
	Username  string          `json:"username"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	Role      string          `json:"role"`
	ProjectID json.RawMessage `json:"projectId"`
}

// UpdateUser updates an account. Admins may update anyone; everyone else
// only themselves.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := identity.UpdateUserInput{
		Username: sanitize(req.Username),
		Name:     sanitize(req.Name),
		Email:    sanitize(req.Email),
		Password: req.Password,
		Role:     policy.Role(req.Role),
	}
	if len(req.ProjectID) > 0 {
		in.ProjectSet = true
		if string(req.ProjectID) != "null" {
			var pid int64
			if err := json.Unmarshal(req.ProjectID, &pid); err != nil {
				respondError(w, http.StatusBadRequest, "invalid project ID")
				return
			}
			in.ProjectID = &pid
		}
	}

	if err := h.identity.UpdateUser(r.Context(), actor, userID, in); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"message": "user updated successfully",
	})
}

// DeleteUser removes an account. Admin only.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if err := h.identity.DeleteUser(r.Context(), actor, userID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"message": "user deleted successfully",
	})
}

// UserDetails returns one account
func (h *Handler) UserDetails(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	user, err := h.identity.UserDetails(r.Context(), actor, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"user": userView(user),
	})
}

// ListUsers returns every account. Admin only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	users, err := h.identity.ListUsers(r.Context(), actor)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"users": userViews(users),
	})
}
