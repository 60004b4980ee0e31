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

package id

import "github.com/google/uuid"

// NewToken returns a new opaque identifier for session tokens. UUIDv7 is
// time-ordered, which keeps the sessions index append-friendly.
func NewToken() string {
	v, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the randomness source does; fall back
		// to v4 which panics in the same condition.
		return uuid.NewString()
	}
	return v.String()
}
