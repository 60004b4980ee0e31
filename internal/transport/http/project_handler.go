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

	"github.com/bugtrail/bugtrail/internal/project"
)

// ProjectRequest represents project creation/update data
type ProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateProject creates a new project. Admin or Manager.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.projects.CreateProject(r.Context(), actor, project.Input{
		Name:        sanitize(req.Name),
		Description: sanitize(req.Description),
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusCreated, map[string]any{
		"project": projectView(p),
	})
}

// UpdateProject renames a project. Admin or Manager.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.projects.UpdateProject(r.Context(), actor, projectID, project.Input{
		Name:        sanitize(req.Name),
		Description: sanitize(req.Description),
	}); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"message": "project updated successfully",
	})
}

// ProjectDetails returns one project
func (h *Handler) ProjectDetails(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	p, err := h.projects.ProjectDetails(r.Context(), actor, projectID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"project": projectView(p),
	})
}

// ListProjects returns the projects visible to the actor
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	projects, err := h.projects.ListProjects(r.Context(), actor)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"projects": projectViews(projects),
	})
}

// AssignUserRequest carries the user to place on a project
type AssignUserRequest struct {
	UserID int64 `json:"userId"`
}

// AssignUserToProject places a user on a project. Admin or Manager.
func (h *Handler) AssignUserToProject(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project ID")
		return
	}

	var req AssignUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID <= 0 {
		respondError(w, http.StatusBadRequest, "valid user ID is required")
		return
	}

	if err := h.projects.AssignUser(r.Context(), actor, req.UserID, projectID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"message": "user assigned to project",
	})
}

// RemoveUserFromProject clears a user's project assignment. Admin or
// Manager.
func (h *Handler) RemoveUserFromProject(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	projectID, err := pathID(r, "projectID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project ID")
		return
	}
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if err := h.projects.RemoveUser(r.Context(), actor, userID, projectID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"message": "user removed from project",
	})
}
