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
	"log/slog"
	"net/http"

	"github.com/bugtrail/bugtrail/internal/observability/logger"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a user and opens a session
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.identity.Authenticate(r.Context(), req.Username, req.Password)
	h.meter.Login(r.Context(), err == nil)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	sess, err := h.sessions.Create(r.Context(), user.ID, getIPAddress(r), r.UserAgent())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create session", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.setSessionCookie(w, sess.ID)

	respondSuccess(w, http.StatusOK, map[string]any{
		"user": userView(user),
	})
}

// Logout destroys the current session
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())
	sessionID := GetSessionID(r.Context())

	if sessionID != "" {
		if err := h.sessions.Destroy(r.Context(), sessionID); err != nil {
			slog.ErrorContext(r.Context(), "failed to destroy session", logger.Error(err))
		}
	}
	h.identity.Logout(r.Context(), actor)

	h.clearSessionCookie(w)

	respondSuccess(w, http.StatusOK, map[string]any{
		"message": "logged out successfully",
	})
}

// GetCurrentUser returns the authenticated account
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := GetActor(r.Context())

	user, err := h.identity.GetUser(r.Context(), actor.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"user": userView(user),
	})
}
