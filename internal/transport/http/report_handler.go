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
	"net/http"
	"time"

	"github.com/bugtrail/bugtrail/internal/activity"
)

// Dashboard returns the landing view for the actor
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	dash, err := h.reports.Dashboard(r.Context(), actor)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"user":       userView(dash.User),
		"bugs":       bugViews(dash.Bugs),
		"projects":   projectViews(dash.Projects),
		"statistics": dash.Statistics,
	})
}

// SystemStatistics returns system-wide totals. Admin only.
func (h *Handler) SystemStatistics(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	stats, err := h.reports.SystemStatistics(r.Context(), actor)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"statistics": stats,
	})
}

// ActivityResponse is the JSON view of one activity entry
type ActivityResponse struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"userId"`
	BugID       *int64    `json:"bugId"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// ActivityLog returns the actor's own activity entries, newest first
func (h *Handler) ActivityLog(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	entries, err := h.reports.ActivityLog(r.Context(), actor)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := make([]ActivityResponse, len(entries))
	for i, e := range entries {
		out[i] = activityView(e)
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"activity": out,
	})
}

func activityView(e *activity.Entry) ActivityResponse {
	return ActivityResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		BugID:       e.BugID,
		Action:      e.Action,
		Description: e.Description,
		Timestamp:   e.Timestamp,
	}
}
