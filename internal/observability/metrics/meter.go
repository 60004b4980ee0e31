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

// Package metrics holds the service's OpenTelemetry instruments. When
// no meter provider is installed (or metrics are disabled) the
// instruments come from the global no-op provider and recording is free.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Config holds metrics configuration
type Config struct {
	Enabled     bool
	ServiceName string
}

// Meter carries the domain instruments the handlers record. A nil
// *Meter is valid and records nothing.
type Meter struct {
	bugsCreated metric.Int64Counter
	bugsClosed  metric.Int64Counter
	logins      metric.Int64Counter
}

// New creates the instrument set from the global meter provider
func New(cfg Config) (*Meter, error) {
	scope := cfg.ServiceName
	if !cfg.Enabled {
		scope = "noop"
	}
	meter := otel.Meter(scope)

	bugsCreated, err := meter.Int64Counter("bugtrail.bugs.created",
		metric.WithDescription("Bugs raised"))
	if err != nil {
		return nil, fmt.Errorf("failed to create bugs-created counter: %w", err)
	}

	bugsClosed, err := meter.Int64Counter("bugtrail.bugs.closed",
		metric.WithDescription("Bugs closed"))
	if err != nil {
		return nil, fmt.Errorf("failed to create bugs-closed counter: %w", err)
	}

	logins, err := meter.Int64Counter("bugtrail.logins",
		metric.WithDescription("Login attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create logins counter: %w", err)
	}

	return &Meter{
		bugsCreated: bugsCreated,
		bugsClosed:  bugsClosed,
		logins:      logins,
	}, nil
}

// BugCreated counts one raised bug
func (m *Meter) BugCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.bugsCreated.Add(ctx, 1)
}

// BugClosed counts one closed bug
func (m *Meter) BugClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.bugsClosed.Add(ctx, 1)
}

// Login counts one login attempt, tagged with its outcome
func (m *Meter) Login(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
