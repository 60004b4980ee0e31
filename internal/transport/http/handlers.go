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
	"errors"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bugtrail/bugtrail/internal/bug"
	"github.com/bugtrail/bugtrail/internal/identity"
	"github.com/bugtrail/bugtrail/internal/observability/logger"
	"github.com/bugtrail/bugtrail/internal/observability/metrics"
	"github.com/bugtrail/bugtrail/internal/policy"
	"github.com/bugtrail/bugtrail/internal/project"
	"github.com/bugtrail/bugtrail/internal/report"
	"github.com/bugtrail/bugtrail/internal/session"
	"github.com/bugtrail/bugtrail/internal/validate"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	identity      *identity.Service
	projects      *project.Service
	bugs          *bug.Service
	reports       *report.Service
	sessions      *session.Service
	sessionConfig SessionConfig
	meter         *metrics.Meter
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	CookieName     string
	CookieDomain   string
	CookiePath     string
	CookieSecure   bool
	CookieHTTPOnly bool
	CookieSameSite http.SameSite
	Lifetime       time.Duration
}

// NewHandler creates a new HTTP handler
func NewHandler(
	identityService *identity.Service,
	projectService *project.Service,
	bugService *bug.Service,
	reportService *report.Service,
	sessionService *session.Service,
	sessionConfig SessionConfig,
	meter *metrics.Meter,
) *Handler {
	return &Handler{
		identity:      identityService,
		projects:      projectService,
		bugs:          bugService,
		reports:       reportService,
		sessions:      sessionService,
		sessionConfig: sessionConfig,
		meter:         meter,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/me", h.GetCurrentUser)

			r.Get("/dashboard", h.Dashboard)
			r.Get("/statistics", h.SystemStatistics)
			r.Get("/activity", h.ActivityLog)

			r.Route("/users", func(r chi.Router) {
				r.Post("/", h.CreateUser)
				r.Get("/", h.ListUsers)
				r.Get("/{userID}", h.UserDetails)
				r.Put("/{userID}", h.UpdateUser)
				r.Delete("/{userID}", h.DeleteUser)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", h.CreateProject)
				r.Get("/", h.ListProjects)
				r.Get("/{projectID}", h.ProjectDetails)
				r.Put("/{projectID}", h.UpdateProject)
				r.Post("/{projectID}/users", h.AssignUserToProject)
				r.Delete("/{projectID}/users/{userID}", h.RemoveUserFromProject)
			})

			r.Route("/bugs", func(r chi.Router) {
				r.Post("/", h.CreateBug)
				r.Get("/", h.ListBugs)
				r.Get("/{bugID}", h.BugDetails)
				r.Put("/{bugID}", h.UpdateBug)
				r.Delete("/{bugID}", h.DeleteBug)
				r.Put("/{bugID}/status", h.UpdateBugStatus)
				r.Post("/{bugID}/assign", h.AssignBug)
				r.Post("/{bugID}/unassign", h.UnassignBug)
				r.Post("/{bugID}/close", h.CloseBug)
			})
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "bugtrail",
	})
}

// Helper functions
func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionConfig.CookieName,
		Value:    sessionID,
		Path:     h.sessionConfig.CookiePath,
		Domain:   h.sessionConfig.CookieDomain,
		Secure:   h.sessionConfig.CookieSecure,
		HttpOnly: h.sessionConfig.CookieHTTPOnly,
		SameSite: h.sessionConfig.CookieSameSite,
		MaxAge:   int(h.sessionConfig.Lifetime.Seconds()),
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   h.sessionConfig.CookieName,
		Value:  "",
		Path:   h.sessionConfig.CookiePath,
		Domain: h.sessionConfig.CookieDomain,
		MaxAge: -1,
	})
}

func (h *Handler) getSessionFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(h.sessionConfig.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondSuccess writes the success envelope every API response shares.
func respondSuccess(w http.ResponseWriter, status int, data map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range data {
		body[k] = v
	}
	respondJSON(w, status, body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

// respondServiceError maps domain errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validate.Error
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, policy.ErrPermissionDenied):
		respondError(w, http.StatusForbidden, "You do not have permission to perform this action")
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, identity.ErrUserNotFound),
		errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, bug.ErrBugNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, identity.ErrUsernameTaken),
		errors.Is(err, project.ErrAlreadyAssigned),
		errors.Is(err, project.ErrNotAssigned):
		respondError(w, http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed",
			logger.Error(err),
			logger.Path(r.URL.Path),
		)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func getIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

// sanitize trims and HTML-escapes free-text input before it reaches the
// services.
func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// Response shapes

// UserResponse is the JSON view of an account
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ProjectID *int64    `json:"projectId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func userView(u *identity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		ProjectID: u.ProjectID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func userViews(users []*identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = userView(u)
	}
	return out
}

// ProjectResponse is the JSON view of a project
type ProjectResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func projectView(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func projectViews(projects []*project.Project) []ProjectResponse {
	out := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		out[i] = projectView(p)
	}
	return out
}

// BugResponse is the JSON view of a bug
type BugResponse struct {
	ID             int64      `json:"id"`
	Summary        string     `json:"summary"`
	Description    string     `json:"description"`
	ProjectID      int64      `json:"projectId"`
	ProjectName    string     `json:"projectName,omitempty"`
	OwnerID        int64      `json:"ownerId"`
	OwnerName      string     `json:"ownerName,omitempty"`
	AssignedToID   *int64     `json:"assignedToId"`
	AssignedName   string     `json:"assignedName,omitempty"`
	Status         int        `json:"status"`
	StatusLabel    string     `json:"statusLabel"`
	Priority       int        `json:"priority"`
	PriorityLabel  string     `json:"priorityLabel"`
	TargetDate     *time.Time `json:"targetDate"`
	DateRaised     time.Time  `json:"dateRaised"`
	DateClosed     *time.Time `json:"dateClosed"`
	FixDescription string     `json:"fixDescription,omitempty"`
	UpdatedBy      int64      `json:"updatedBy"`
}

func bugView(b *bug.Bug) BugResponse {
	return BugResponse{
		ID:             b.ID,
		Summary:        b.Summary,
		Description:    b.Description,
		ProjectID:      b.ProjectID,
		ProjectName:    b.ProjectName,
		OwnerID:        b.OwnerID,
		OwnerName:      b.OwnerName,
		AssignedToID:   b.AssignedToID,
		AssignedName:   b.AssignedName,
		Status:         int(b.Status),
		StatusLabel:    b.Status.String(),
		Priority:       int(b.Priority),
		PriorityLabel:  b.Priority.String(),
		TargetDate:     b.TargetDate,
		DateRaised:     b.DateRaised,
		DateClosed:     b.DateClosed,
		FixDescription: b.FixDescription,
		UpdatedBy:      b.UpdatedBy,
	}
}

func bugViews(bugs []*bug.Bug) []BugResponse {
	out := make([]BugResponse, len(bugs))
	for i, b := range bugs {
		out[i] = bugView(b)
	}
	return out
}
