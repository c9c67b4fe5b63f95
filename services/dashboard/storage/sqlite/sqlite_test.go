// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthdesk/growthdesk/services/dashboard/datatypes"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "growthdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func fullExperiment() datatypes.Experiment {
	rice := 2.5
	reach := 50
	impact := 1.0
	confidence := 50
	effort := 10
	target := 0.25
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	duration := 14
	sprint := 9
	cost := 15000.0
	before := "signup completion 41%"
	after := "signup completion 54%"
	actual := 0.54
	outcome := datatypes.OutcomeSuccess
	learnings := "checklist placement mattered more than copy"
	doc := "https://docs.growthdesk.io/exp/EXP-042"

	return datatypes.Experiment{
		ExperimentID:       "EXP-042",
		Name:               "Onboarding checklist",
		Category:           datatypes.CategoryEngagement,
		Owner:              "priya",
		Status:             datatypes.StatusCompleted,
		ICEScore:           210,
		ImpactScore:        7,
		ConfidenceScore:    6,
		EaseScore:          5,
		RICEScore:          &rice,
		RICEReach:          &reach,
		RICEImpact:         &impact,
		RICEConfidence:     &confidence,
		RICEEffort:         &effort,
		Hypothesis:         "a checklist raises activation",
		SuccessCriteria:    "signup completion over 50%",
		PrimaryMetric:      "signup_completion",
		SecondaryMetrics:   []string{"d7_retention", "invites_sent"},
		TargetValue:        &target,
		StartDate:          &start,
		EndDate:            &end,
		DurationDays:       &duration,
		SprintWeek:         &sprint,
		CostInINR:          &cost,
		ResourcesNeeded:    []string{"designer", "1 sprint"},
		ResultsBefore:      &before,
		ResultsAfter:       &after,
		ActualResult:       &actual,
		Outcome:            &outcome,
		Learnings:          &learnings,
		NextActions:        []string{"roll out to all cohorts"},
		RelatedExperiments: []string{"EXP-031"},
		DocumentationURL:   &doc,
		Tags:               []string{"onboarding", "q1"},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	inserted, err := store.Insert(ctx, fullExperiment())
	require.NoError(t, err)
	require.NotEmpty(t, inserted.ID)
	assert.Equal(t, inserted.CreatedAt, inserted.UpdatedAt)

	got, err := store.Get(ctx, inserted.ID)
	require.NoError(t, err)
	assert.Equal(t, inserted, got)
}

func TestStore_MinimalRecordKeepsNilsAndEmptyLists(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	inserted, err := store.Insert(ctx, datatypes.Experiment{
		ExperimentID:    "EXP-001",
		Name:            "Bare minimum",
		Category:        datatypes.CategoryProduct,
		Owner:           "dev",
		Status:          datatypes.StatusBacklog,
		ICEScore:        64,
		ImpactScore:     4,
		ConfidenceScore: 4,
		EaseScore:       4,
		Hypothesis:      "h",
		SuccessCriteria: "s",
		PrimaryMetric:   "m",
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, inserted.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RICEScore)
	assert.Nil(t, got.Outcome)
	assert.Nil(t, got.StartDate)
	assert.Equal(t, []string{}, got.SecondaryMetrics)
	assert.Equal(t, []string{}, got.Tags)
}

func TestStore_UpdateBumpsUpdatedAtAndReorders(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := store.Insert(ctx, fullExperiment())
	require.NoError(t, err)

	second := fullExperiment()
	second.ExperimentID = "EXP-043"
	secondIns, err := store.Insert(ctx, second)
	require.NoError(t, err)

	first.Status = datatypes.StatusArchived
	updated, err := store.Update(ctx, first)
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(first.UpdatedAt))

	listed, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, datatypes.StatusArchived, listed[0].Status)
	assert.Equal(t, secondIns.ID, listed[1].ID)
}

func TestStore_NotFound(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, datatypes.ErrNotFound)

	_, err = store.Update(ctx, fullExperiment())
	assert.ErrorIs(t, err, datatypes.ErrNotFound)
}

func TestStore_DuplicateExperimentIDRejected(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.Insert(ctx, fullExperiment())
	require.NoError(t, err)
	_, err = store.Insert(ctx, fullExperiment())
	assert.Error(t, err)
}
