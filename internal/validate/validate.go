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

// Package validate carries accumulated per-field validation failures so a
// caller gets every problem with a request in one message instead of the
// first one hit.
package validate

import "strings"

// Error holds the per-field messages collected while validating one
// request. It is only returned non-empty.
type Error struct {
	Fields []string
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

// Errors accumulates validation failures.
type Errors struct {
	fields []string
}

// Add records one per-field failure message.
func (v *Errors) Add(msg string) {
	v.fields = append(v.fields, msg)
}

// Addf is Add with the common "field: reason" shape preformatted by the
// caller. Kept separate so call sites read uniformly.
func (v *Errors) Addf(field, reason string) {
	v.fields = append(v.fields, field+" "+reason)
}

// Err returns the accumulated *Error, or nil when everything passed.
func (v *Errors) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &Error{Fields: v.fields}
}
