// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides the experiment domain model, the request
// types for the dashboard API, and the validation/normalization pipeline
// that turns raw form input into a persisted experiment record.
package datatypes

import (
	"strings"
	"time"
)

// Category classifies an experiment. Fixed six-value enumeration.
type Category string

const (
	CategoryContent         Category = "content"
	CategoryEvents          Category = "events"
	CategoryMonetization    Category = "monetization"
	CategoryProduct         Category = "product"
	CategoryCommunityGrowth Category = "community_growth"
	CategoryEngagement      Category = "engagement"
)

// Categories lists every legal category value.
var Categories = []Category{
	CategoryContent,
	CategoryEvents,
	CategoryMonetization,
	CategoryProduct,
	CategoryCommunityGrowth,
	CategoryEngagement,
}

// Status is the lifecycle stage of an experiment.
//
// The nominal progression is backlog → planning → scheduled → live →
// analyzing → completed → archived, but transitions are deliberately
// unenforced: any status may be set from any other via update. Archival
// is a status, not a deletion.
type Status string

const (
	StatusBacklog   Status = "backlog"
	StatusPlanning  Status = "planning"
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusAnalyzing Status = "analyzing"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Statuses lists every legal status value in lifecycle order.
var Statuses = []Status{
	StatusBacklog,
	StatusPlanning,
	StatusScheduled,
	StatusLive,
	StatusAnalyzing,
	StatusCompleted,
	StatusArchived,
}

// Outcome records how a completed experiment turned out.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeFail         Outcome = "fail"
	OutcomeInconclusive Outcome = "inconclusive"
)

// Outcomes lists every legal outcome value.
var Outcomes = []Outcome{OutcomeSuccess, OutcomeFail, OutcomeInconclusive}

// Experiment is the single entity tracked by the dashboard.
//
// Optional scalars are pointers (nil means absent, never zero); optional
// list fields default to empty slices. ICEScore is always the product of
// the three ICE factors unless an explicit override was supplied at
// creation. RICEScore is present only when the full RICE quadruple is.
type Experiment struct {
	ID           string `json:"id"`
	ExperimentID string `json:"experiment_id"`
	Name         string `json:"name"`

	Category Category `json:"category"`
	Owner    string   `json:"owner"`
	Status   Status   `json:"status"`

	ICEScore        float64 `json:"ice_score"`
	ImpactScore     float64 `json:"impact_score"`
	ConfidenceScore float64 `json:"confidence_score"`
	EaseScore       float64 `json:"ease_score"`

	RICEScore      *float64 `json:"rice_score"`
	RICEReach      *int     `json:"rice_reach"`
	RICEImpact     *float64 `json:"rice_impact"`
	RICEConfidence *int     `json:"rice_confidence"`
	RICEEffort     *int     `json:"rice_effort"`

	Hypothesis       string   `json:"hypothesis"`
	SuccessCriteria  string   `json:"success_criteria"`
	PrimaryMetric    string   `json:"primary_metric"`
	SecondaryMetrics []string `json:"secondary_metrics"`
	TargetValue      *float64 `json:"target_value"`

	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	DurationDays *int       `json:"duration_days"`
	SprintWeek   *int       `json:"sprint_week"`
	CostInINR    *float64   `json:"cost_in_inr"`

	ResourcesNeeded []string `json:"resources_needed"`

	ResultsBefore      *string  `json:"results_before"`
	ResultsAfter       *string  `json:"results_after"`
	ActualResult       *float64 `json:"actual_result"`
	Outcome            *Outcome `json:"outcome"`
	Learnings          *string  `json:"learnings"`
	NextActions        []string `json:"next_actions"`
	RelatedExperiments []string `json:"related_experiments"`
	DocumentationURL   *string  `json:"documentation_url"`
	Tags               []string `json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Label returns the status title-cased for display ("backlog" → "Backlog").
func (s Status) Label() string {
	return titleWord(string(s))
}

// Label returns the category with underscores replaced by spaces
// ("community_growth" → "community growth").
func (c Category) Label() string {
	return strings.ReplaceAll(string(c), "_", " ")
}

// TitleLabel returns the category title-cased for external documents
// ("community_growth" → "Community Growth").
func (c Category) TitleLabel() string {
	words := strings.Split(c.Label(), " ")
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

// Label returns the outcome title-cased for display.
func (o Outcome) Label() string {
	return titleWord(string(o))
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
