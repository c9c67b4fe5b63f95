// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sqlite persists experiments in a single-file SQLite database
// via the pure-Go modernc.org driver, so builds stay CGO-free.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/growthdesk/growthdesk/services/dashboard/datatypes"
)

const schema = `
CREATE TABLE IF NOT EXISTS experiments (
	id                  TEXT PRIMARY KEY,
	experiment_id       TEXT NOT NULL UNIQUE,
	name                TEXT NOT NULL,
	category            TEXT NOT NULL,
	owner               TEXT NOT NULL,
	status              TEXT NOT NULL,
	ice_score           REAL NOT NULL,
	impact_score        REAL NOT NULL,
	confidence_score    REAL NOT NULL,
	ease_score          REAL NOT NULL,
	rice_score          REAL,
	rice_reach          INTEGER,
	rice_impact         REAL,
	rice_confidence     INTEGER,
	rice_effort         INTEGER,
	hypothesis          TEXT NOT NULL,
	success_criteria    TEXT NOT NULL,
	primary_metric      TEXT NOT NULL,
	secondary_metrics   TEXT NOT NULL DEFAULT '[]',
	target_value        REAL,
	start_date          TEXT,
	end_date            TEXT,
	duration_days       INTEGER,
	sprint_week         INTEGER,
	cost_in_inr         REAL,
	resources_needed    TEXT NOT NULL DEFAULT '[]',
	results_before      TEXT,
	results_after       TEXT,
	actual_result       REAL,
	outcome             TEXT,
	learnings           TEXT,
	next_actions        TEXT NOT NULL DEFAULT '[]',
	related_experiments TEXT NOT NULL DEFAULT '[]',
	documentation_url   TEXT,
	tags                TEXT NOT NULL DEFAULT '[]',
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_experiments_updated_at ON experiments (updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_experiments_status ON experiments (status);
`

const columns = `id, experiment_id, name, category, owner, status,
	ice_score, impact_score, confidence_score, ease_score,
	rice_score, rice_reach, rice_impact, rice_confidence, rice_effort,
	hypothesis, success_criteria, primary_metric, secondary_metrics, target_value,
	start_date, end_date, duration_days, sprint_week, cost_in_inr,
	resources_needed, results_before, results_after, actual_result, outcome,
	learnings, next_actions, related_experiments, documentation_url, tags,
	created_at, updated_at`

// Store implements storage.Store on SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for an ephemeral database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// The driver is single-writer; serializing in the pool beats
	// SQLITE_BUSY retries at this write volume.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) List(ctx context.Context) ([]datatypes.Experiment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+columns+` FROM experiments ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	defer rows.Close()

	out := []datatypes.Experiment{}
	for rows.Next() {
		exp, err := scanExperiment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (datatypes.Experiment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM experiments WHERE id = ?`, id)
	exp, err := scanExperiment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return datatypes.Experiment{}, fmt.Errorf("experiment %s: %w", id, datatypes.ErrNotFound)
	}
	return exp, err
}

func (s *Store) Insert(ctx context.Context, exp datatypes.Experiment) (datatypes.Experiment, error) {
	now := s.now().UTC()
	exp.ID = uuid.NewString()
	exp.CreatedAt = now
	exp.UpdatedAt = now

	args, err := writeArgs(exp)
	if err != nil {
		return datatypes.Experiment{}, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO experiments (`+columns+`) VALUES (`+placeholders(37)+`)`,
		args...); err != nil {
		return datatypes.Experiment{}, fmt.Errorf("insert experiment %s: %w", exp.ExperimentID, err)
	}
	return exp, nil
}

func (s *Store) Update(ctx context.Context, exp datatypes.Experiment) (datatypes.Experiment, error) {
	exp.UpdatedAt = s.now().UTC()

	args, err := writeArgs(exp)
	if err != nil {
		return datatypes.Experiment{}, err
	}
	// id leads the column list, so it moves from first arg to the WHERE.
	res, err := s.db.ExecContext(ctx, `UPDATE experiments SET
		experiment_id = ?, name = ?, category = ?, owner = ?, status = ?,
		ice_score = ?, impact_score = ?, confidence_score = ?, ease_score = ?,
		rice_score = ?, rice_reach = ?, rice_impact = ?, rice_confidence = ?, rice_effort = ?,
		hypothesis = ?, success_criteria = ?, primary_metric = ?, secondary_metrics = ?, target_value = ?,
		start_date = ?, end_date = ?, duration_days = ?, sprint_week = ?, cost_in_inr = ?,
		resources_needed = ?, results_before = ?, results_after = ?, actual_result = ?, outcome = ?,
		learnings = ?, next_actions = ?, related_experiments = ?, documentation_url = ?, tags = ?,
		created_at = ?, updated_at = ?
		WHERE id = ?`, append(args[1:], exp.ID)...)
	if err != nil {
		return datatypes.Experiment{}, fmt.Errorf("update experiment %s: %w", exp.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return datatypes.Experiment{}, fmt.Errorf("update experiment %s: %w", exp.ID, err)
	}
	if affected == 0 {
		return datatypes.Experiment{}, fmt.Errorf("experiment %s: %w", exp.ID, datatypes.ErrNotFound)
	}
	return exp, nil
}

func placeholders(n int) string {
	out := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',', ' ')
		}
		out = append(out, '?')
	}
	return string(out)
}

func writeArgs(exp datatypes.Experiment) ([]any, error) {
	secondary, err := marshalList(exp.SecondaryMetrics)
	if err != nil {
		return nil, err
	}
	resources, err := marshalList(exp.ResourcesNeeded)
	if err != nil {
		return nil, err
	}
	next, err := marshalList(exp.NextActions)
	if err != nil {
		return nil, err
	}
	related, err := marshalList(exp.RelatedExperiments)
	if err != nil {
		return nil, err
	}
	tags, err := marshalList(exp.Tags)
	if err != nil {
		return nil, err
	}

	var outcome *string
	if exp.Outcome != nil {
		s := string(*exp.Outcome)
		outcome = &s
	}

	return []any{
		exp.ID, exp.ExperimentID, exp.Name, string(exp.Category), exp.Owner, string(exp.Status),
		exp.ICEScore, exp.ImpactScore, exp.ConfidenceScore, exp.EaseScore,
		exp.RICEScore, exp.RICEReach, exp.RICEImpact, exp.RICEConfidence, exp.RICEEffort,
		exp.Hypothesis, exp.SuccessCriteria, exp.PrimaryMetric, secondary, exp.TargetValue,
		timePtrArg(exp.StartDate), timePtrArg(exp.EndDate), exp.DurationDays, exp.SprintWeek, exp.CostInINR,
		resources, exp.ResultsBefore, exp.ResultsAfter, exp.ActualResult, outcome,
		exp.Learnings, next, related, exp.DocumentationURL, tags,
		exp.CreatedAt.UTC().Format(time.RFC3339Nano), exp.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

func marshalList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode list column: %w", err)
	}
	return string(raw), nil
}

func timePtrArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExperiment(row scanner) (datatypes.Experiment, error) {
	var (
		exp                         datatypes.Experiment
		category, status            string
		secondary, resources, next  string
		related, tags               string
		startDate, endDate, outcome sql.NullString
		createdAt, updatedAt        string
	)
	err := row.Scan(
		&exp.ID, &exp.ExperimentID, &exp.Name, &category, &exp.Owner, &status,
		&exp.ICEScore, &exp.ImpactScore, &exp.ConfidenceScore, &exp.EaseScore,
		&exp.RICEScore, &exp.RICEReach, &exp.RICEImpact, &exp.RICEConfidence, &exp.RICEEffort,
		&exp.Hypothesis, &exp.SuccessCriteria, &exp.PrimaryMetric, &secondary, &exp.TargetValue,
		&startDate, &endDate, &exp.DurationDays, &exp.SprintWeek, &exp.CostInINR,
		&resources, &exp.ResultsBefore, &exp.ResultsAfter, &exp.ActualResult, &outcome,
		&exp.Learnings, &next, &related, &exp.DocumentationURL, &tags,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return datatypes.Experiment{}, err
	}

	exp.Category = datatypes.Category(category)
	exp.Status = datatypes.Status(status)
	if outcome.Valid {
		o := datatypes.Outcome(outcome.String)
		exp.Outcome = &o
	}

	if exp.SecondaryMetrics, err = unmarshalList(secondary); err != nil {
		return datatypes.Experiment{}, err
	}
	if exp.ResourcesNeeded, err = unmarshalList(resources); err != nil {
		return datatypes.Experiment{}, err
	}
	if exp.NextActions, err = unmarshalList(next); err != nil {
		return datatypes.Experiment{}, err
	}
	if exp.RelatedExperiments, err = unmarshalList(related); err != nil {
		return datatypes.Experiment{}, err
	}
	if exp.Tags, err = unmarshalList(tags); err != nil {
		return datatypes.Experiment{}, err
	}

	if exp.StartDate, err = parseTimePtr(startDate); err != nil {
		return datatypes.Experiment{}, err
	}
	if exp.EndDate, err = parseTimePtr(endDate); err != nil {
		return datatypes.Experiment{}, err
	}
	if exp.CreatedAt, err = parseTime(createdAt); err != nil {
		return datatypes.Experiment{}, err
	}
	if exp.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return datatypes.Experiment{}, err
	}
	return exp, nil
}

func unmarshalList(raw string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode list column: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode time column %q: %w", raw, err)
	}
	return t, nil
}

func parseTimePtr(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid {
		return nil, nil
	}
	t, err := parseTime(raw.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
