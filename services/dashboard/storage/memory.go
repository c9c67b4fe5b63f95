// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/growthdesk/growthdesk/services/dashboard/datatypes"
)

// Memory is a map-backed Store. It honors the same id/timestamp
// assignment contract as the sqlite store so handler tests exercise the
// real write path.
type Memory struct {
	mu   sync.RWMutex
	exps map[string]datatypes.Experiment
	now  func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{exps: map[string]datatypes.Experiment{}, now: time.Now}
}

// SetClock overrides the timestamp source. Test hook.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) List(_ context.Context) ([]datatypes.Experiment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]datatypes.Experiment, 0, len(m.exps))
	for _, exp := range m.exps {
		out = append(out, exp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) Get(_ context.Context, id string) (datatypes.Experiment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exp, ok := m.exps[id]
	if !ok {
		return datatypes.Experiment{}, datatypes.ErrNotFound
	}
	return exp, nil
}

func (m *Memory) Insert(_ context.Context, exp datatypes.Experiment) (datatypes.Experiment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	exp.ID = uuid.NewString()
	exp.CreatedAt = now
	exp.UpdatedAt = now
	m.exps[exp.ID] = exp
	return exp, nil
}

func (m *Memory) Update(_ context.Context, exp datatypes.Experiment) (datatypes.Experiment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exps[exp.ID]; !ok {
		return datatypes.Experiment{}, datatypes.ErrNotFound
	}
	exp.UpdatedAt = m.now().UTC()
	m.exps[exp.ID] = exp
	return exp, nil
}

func (m *Memory) Close() error { return nil }
