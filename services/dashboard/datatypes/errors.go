// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the experiment store and write gate.
var (
	// ErrNotFound is returned when the referenced experiment id does not
	// exist on lookup or update.
	ErrNotFound = errors.New("experiment not found")

	// ErrWritesDisabled is returned by mutating operations while the
	// write gate is off. Distinguished from validation failures so
	// callers can render a read-only-mode message.
	ErrWritesDisabled = errors.New("write operations are disabled: set GROWTHDESK_ENABLE_WRITES=true to mutate the database")

	// ErrMirrorNotConfigured is returned by mirror operations that need
	// credentials before they can call out, such as an import query.
	ErrMirrorNotConfigured = errors.New("mirror not configured")
)

// FieldViolation describes a single violated constraint on input.
type FieldViolation struct {
	// Field is the JSON name of the offending field.
	Field string `json:"field"`

	// Rule is the constraint that failed (e.g. "required", "oneof").
	Rule string `json:"rule"`

	// Message is a human-readable description of the failure.
	Message string `json:"message"`
}

// ValidationError carries every violated field constraint for a create or
// update payload, not just the first. Nothing is partially applied when
// one is returned.
type ValidationError struct {
	Violations []FieldViolation `json:"violations"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return fmt.Sprintf("validation failed on %d field(s): %s",
		len(e.Violations), strings.Join(fields, ", "))
}

// SyncError is an external mirror failure after exhausting retries.
// Always non-fatal to the primary operation; surfaced as a per-item
// result, never thrown up to abort a batch.
type SyncError struct {
	// Target names the mirror ("notion", "drive").
	Target string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	return fmt.Sprintf("sync to %s failed: %v", e.Target, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SyncError) Unwrap() error {
	return e.Err
}
