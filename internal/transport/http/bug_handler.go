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
	"strconv"
	"time"

	"github.com/bugtrail/bugtrail/internal/bug"
)

// CreateBugRequest represents bug creation data. Owner is stamped from
// the session, never taken from the payload.
type CreateBugRequest struct {
	Summary      string     `json:"summary"`
	Description  string     `json:"description"`
	ProjectID    int64      `json:"projectId"`
	AssignedToID *int64     `json:"assignedToId"`
	Status       int        `json:"status"`
	Priority     int        `json:"priority"`
	TargetDate   *time.Time `json:"targetDate"`
}

// CreateBug creates a bug owned by the acting user
func (h *Handler) CreateBug(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	var req CreateBugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.bugs.CreateBug(r.Context(), actor, bug.CreateInput{
		Summary:      sanitize(req.Summary),
		Description:  sanitize(req.Description),
		ProjectID:    req.ProjectID,
		AssignedToID: req.AssignedToID,
		Status:       bug.Status(req.Status),
		Priority:     bug.Priority(req.Priority),
		TargetDate:   req.TargetDate,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.meter.BugCreated(r.Context())

	respondSuccess(w, http.StatusCreated, map[string]any{
		"bug": bugView(b),
	})
}

// UpdateBugRequest represents a full bug update
type UpdateBugRequest struct {
	Summary      string     `json:"summary"`
	Description  string     `json:"description"`
	AssignedToID *int64     `json:"assignedToId"`
	Status       int        `json:"status"`
	Priority     int        `json:"priority"`
	TargetDate   *time.Time `json:"targetDate"`
}

// UpdateBug rewrites a bug's mutable fields
func (h *Handler) UpdateBug(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	bugID, err := pathID(r, "bugID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid bug ID")
		return
	}

	var req UpdateBugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.bugs.UpdateBug(r.Context(), actor, bugID, bug.UpdateInput{
		Summary:      sanitize(req.Summary),
		Description:  sanitize(req.Description),
		AssignedToID: req.AssignedToID,
		Status:       bug.Status(req.Status),
		Priority:     bug.Priority(req.Priority),
		TargetDate:   req.TargetDate,
	}); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"message": "bug updated successfully",
	})
}

// UpdateBugStatusRequest carries a status-only change
type UpdateBugStatusRequest struct {
	Status int `json:"status"`
}

// UpdateBugStatus changes only the bug's status
func (h *Handler) UpdateBugStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	bugID, err := pathID(r, "bugID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid bug ID")
		return
	}

	var req UpdateBugStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.bugs.UpdateBugStatus(r.Context(), actor, bugID, bug.Status(req.Status)); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"message": "bug status updated",
	})
}

// DeleteBug removes a bug
func (h *Handler) DeleteBug(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	bugID, err := pathID(r, "bugID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid bug ID")
		return
	}

	if err := h.bugs.DeleteBug(r.Context(), actor, bugID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"message": "bug deleted successfully",
	})
}

// AssignBugRequest carries the assignee
type AssignBugRequest struct {
	UserID int64 `json:"userId"`
}

// AssignBug sets the bug's assignee
func (h *Handler) AssignBug(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	bugID, err := pathID(r, "bugID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid bug ID")
		return
	}

	var req AssignBugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID <= 0 {
		respondError(w, http.StatusBadRequest, "valid user ID is required")
		return
	}

	if err := h.bugs.AssignBug(r.Context(), actor, bugID, req.UserID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"message": "bug assigned",
	})
}

// UnassignBug clears the bug's assignee
func (h *Handler) UnassignBug(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	bugID, err := pathID(r, "bugID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid bug ID")
		return
	}

	if err := h.bugs.UnassignBug(r.Context(), actor, bugID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"message": "bug unassigned",
	})
}

// CloseBugRequest carries the fix text stamped onto the closing bug
type CloseBugRequest struct {
	FixDescription string `json:"fixDescription"`
}

// CloseBug marks a bug closed
func (h *Handler) CloseBug(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	bugID, err := pathID(r, "bugID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid bug ID")
		return
	}

	var req CloseBugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.bugs.CloseBug(r.Context(), actor, bugID, sanitize(req.FixDescription)); err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.meter.BugClosed(r.Context())

	respondSuccess(w, http.StatusOK, map[string]any{
		"message": "bug closed",
	})
}

// BugDetails returns one bug
func (h *Handler) BugDetails(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	bugID, err := pathID(r, "bugID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid bug ID")
		return
	}

	b, err := h.bugs.BugDetails(r.Context(), actor, bugID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"bug": bugView(b),
	})
}

// ListBugs returns a bug list selected by query parameters:
//
//	?project_id=N[&filter=open|overdue]  project-scoped lists
//	?assigned=me                         bugs assigned to the caller
//	?owner=me                            bugs the caller raised
//	?filter=unassigned                   every unassigned bug (elevated)
//	?filter=open                         every open bug (elevated)
//	(none)                               the caller's default list
func (h *Handler) ListBugs(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())
	q := r.URL.Query()

	var (
		bugs []*bug.Bug
		err  error
	)

	switch {
	case q.Get("project_id") != "":
		var projectID int64
		projectID, err = strconv.ParseInt(q.Get("project_id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid project ID")
			return
		}
		switch q.Get("filter") {
		case "open":
			bugs, err = h.bugs.OpenBugsByProject(r.Context(), actor, projectID)
		case "overdue":
			bugs, err = h.bugs.OverdueBugsByProject(r.Context(), actor, projectID)
		default:
			bugs, err = h.bugs.BugsByProject(r.Context(), actor, projectID)
		}
	case q.Get("assigned") == "me":
		bugs, err = h.bugs.BugsAssignedToActor(r.Context(), actor)
	case q.Get("owner") == "me":
		bugs, err = h.bugs.BugsOwnedByActor(r.Context(), actor)
	case q.Get("filter") == "unassigned":
		bugs, err = h.bugs.UnassignedBugs(r.Context(), actor)
	case q.Get("filter") == "open":
		bugs, err = h.bugs.AllOpenBugs(r.Context(), actor)
	default:
		bugs, err = h.bugs.BugsForActor(r.Context(), actor)
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"bugs": bugViews(bugs),
	})
}
