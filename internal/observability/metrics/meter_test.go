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

package metrics

import (
	"context"
	"testing"
)

func TestNew_BuildsInstruments(t *testing.T) {
	m, err := New(Config{Enabled: true, ServiceName: "bugtrail-test"})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if m == nil {
		t.Fatal("New() returned nil meter")
	}

	// Recording against the global provider must not panic, with or
	// without an SDK installed.
	ctx := context.Background()
	m.BugCreated(ctx)
	m.BugClosed(ctx)
	m.Login(ctx, true)
	m.Login(ctx, false)
}

func TestNew_DisabledStillRecordsSafely(t *testing.T) {
	m, err := New(Config{Enabled: false})
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	m.BugCreated(context.Background())
}

func TestNilMeter_RecordsNothing(t *testing.T) {
	var m *Meter
	ctx := context.Background()
	m.BugCreated(ctx)
	m.BugClosed(ctx)
	m.Login(ctx, true)
}
