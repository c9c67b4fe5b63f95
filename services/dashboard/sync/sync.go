// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sync mirrors experiments into external workspace tools.
//
// # Description
//
// Mirrors are strictly best effort: the relational store is the system
// of record and a mirror failure never fails the write that triggered
// it. Each mirror reports a Result instead of an error so callers can
// surface partial outcomes (a batch sync returns one Result per
// experiment per target). Page and file ids handed back by the targets
// are remembered in a refs.Store so re-syncing an experiment updates
// the existing document instead of minting a duplicate.
package sync

import (
	"context"
	"net/http"

	"github.com/growthdesk/growthdesk/services/dashboard/datatypes"
)

// HTTPClient allows injecting mock HTTP clients for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result is the outcome of mirroring one experiment to one target.
type Result struct {
	Target  string `json:"target"`
	Success bool   `json:"success"`
	Ref     string `json:"ref,omitempty"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Mirror pushes a snapshot of an experiment to one external target.
type Mirror interface {
	// Name identifies the target in results, logs, and metrics.
	Name() string
	// Configured reports whether the credentials this mirror needs
	// were provided. Unconfigured mirrors are skipped, not failed.
	Configured() bool
	// Sync creates or updates the experiment's document on the
	// target. Failures are reported in the Result, never panicked or
	// escalated.
	Sync(ctx context.Context, exp datatypes.Experiment) Result
}

func failure(target string, err error) Result {
	serr := &datatypes.SyncError{Target: target, Err: err}
	return Result{Target: target, Error: serr.Error()}
}

func notConfigured(target, hint string) Result {
	return Result{Target: target, Error: hint}
}
