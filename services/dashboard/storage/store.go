// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package storage defines the persistence contract for experiments and
// an in-memory implementation used by tests and local development. The
// production implementation lives in the sqlite subpackage.
package storage

import (
	"context"

	"github.com/growthdesk/growthdesk/services/dashboard/datatypes"
)

// Store is the persistence contract the handlers program against.
//
// Insert assigns the surrogate id and both timestamps; Update bumps
// updated_at and persists the record as given. Get and Update return
// datatypes.ErrNotFound (possibly wrapped) when the id is unknown.
// List returns the whole collection ordered by updated_at descending.
type Store interface {
	List(ctx context.Context) ([]datatypes.Experiment, error)
	Get(ctx context.Context, id string) (datatypes.Experiment, error)
	Insert(ctx context.Context, exp datatypes.Experiment) (datatypes.Experiment, error)
	Update(ctx context.Context, exp datatypes.Experiment) (datatypes.Experiment, error)
	Close() error
}
