// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/growthdesk/growthdesk/services/dashboard/scoring"
)

// dateLayout is the wire form for calendar dates (no time component).
const dateLayout = "2006-01-02"

// experimentValidate is the shared validator for experiment payloads.
// Initialized in init() with custom validators and JSON field naming.
var experimentValidate *validator.Validate

func init() {
	experimentValidate = validator.New()

	// Report violations under the JSON field name, not the Go name.
	experimentValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// RICE impact is a discrete set, not a range; 1.5 is a failure,
	// never a rounding target.
	_ = experimentValidate.RegisterValidation("riceimpact", func(fl validator.FieldLevel) bool {
		return scoring.ValidRICEImpact(fl.Field().Float())
	})
}

// CreateExperimentRequest is the raw create payload from a form or JSON
// body. Normalize turns it into a persistable Experiment or a
// ValidationError enumerating every violated constraint.
type CreateExperimentRequest struct {
	ExperimentID string `json:"experiment_id" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Category     string `json:"category" validate:"required,oneof=content events monetization product community_growth engagement"`
	Owner        string `json:"owner" validate:"required"`

	// Status defaults to backlog when absent; an explicitly invalid
	// value is rejected, not defaulted.
	Status string `json:"status" validate:"omitempty,oneof=backlog planning scheduled live analyzing completed archived"`

	ImpactScore     float64 `json:"impact_score" validate:"required,gte=1,lte=10"`
	ConfidenceScore float64 `json:"confidence_score" validate:"required,gte=1,lte=10"`
	EaseScore       float64 `json:"ease_score" validate:"required,gte=1,lte=10"`

	// ICEScore, when supplied, overrides the computed product. Treated
	// as an override, not a recomputation trigger; it can diverge from
	// the factors, which is a known data-quality footgun.
	ICEScore *float64 `json:"ice_score"`

	RICEReach      *int     `json:"rice_reach" validate:"omitnil,gte=1,lte=100"`
	RICEImpact     *float64 `json:"rice_impact" validate:"omitnil,riceimpact"`
	RICEConfidence *int     `json:"rice_confidence" validate:"omitnil,gte=1,lte=100"`
	RICEEffort     *int     `json:"rice_effort" validate:"omitnil,gte=1,lte=100"`
	RICEScore      *float64 `json:"rice_score"`

	Hypothesis      string `json:"hypothesis" validate:"required"`
	SuccessCriteria string `json:"success_criteria" validate:"required"`
	PrimaryMetric   string `json:"primary_metric" validate:"required"`

	SecondaryMetrics []string `json:"secondary_metrics"`
	TargetValue      *float64 `json:"target_value"`

	StartDate    string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	DurationDays *int     `json:"duration_days" validate:"omitnil,gt=0"`
	SprintWeek   *int     `json:"sprint_week" validate:"omitnil,gt=0"`
	CostInINR    *float64 `json:"cost_in_inr" validate:"omitnil,gte=0"`

	ResourcesNeeded []string `json:"resources_needed"`

	ResultsBefore      *string  `json:"results_before"`
	ResultsAfter       *string  `json:"results_after"`
	ActualResult       *float64 `json:"actual_result"`
	Outcome            string   `json:"outcome" validate:"omitempty,oneof=success fail inconclusive"`
	Learnings          *string  `json:"learnings"`
	NextActions        []string `json:"next_actions"`
	RelatedExperiments []string `json:"related_experiments"`
	DocumentationURL   *string  `json:"documentation_url" validate:"omitempty,url"`
	Tags               []string `json:"tags"`

	// SyncToNotion asks for a best-effort Notion mirror after the write
	// commits. Not part of the persisted record.
	SyncToNotion bool `json:"sync_to_notion"`
}

// Validate checks every field constraint and returns a ValidationError
// listing all violations, or nil.
func (r *CreateExperimentRequest) Validate() error {
	return collectViolations(experimentValidate.Struct(r))
}

// Normalize validates the payload and produces the experiment record to
// insert. Derived scores are computed here: ICE from the three factors
// (unless explicitly overridden) and RICE only when the full quadruple is
// present. Optional lists default to empty slices, optional scalars to
// nil. ID and timestamps are left for the store to assign.
func (r *CreateExperimentRequest) Normalize() (*Experiment, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	status := Status(r.Status)
	if r.Status == "" {
		status = StatusBacklog
	}

	iceScore := scoring.ICE(r.ImpactScore, r.ConfidenceScore, r.EaseScore)
	if r.ICEScore != nil {
		iceScore = *r.ICEScore
	}

	riceScore := r.RICEScore
	if riceScore == nil {
		riceScore = scoring.RICEFromInputs(r.RICEReach, r.RICEImpact, r.RICEConfidence, r.RICEEffort)
	}

	var outcome *Outcome
	if r.Outcome != "" {
		o := Outcome(r.Outcome)
		outcome = &o
	}

	return &Experiment{
		ExperimentID: r.ExperimentID,
		Name:         r.Name,
		Category:     Category(r.Category),
		Owner:        r.Owner,
		Status:       status,

		ICEScore:        iceScore,
		ImpactScore:     r.ImpactScore,
		ConfidenceScore: r.ConfidenceScore,
		EaseScore:       r.EaseScore,

		RICEScore:      copyFloat(riceScore),
		RICEReach:      copyInt(r.RICEReach),
		RICEImpact:     copyFloat(r.RICEImpact),
		RICEConfidence: copyInt(r.RICEConfidence),
		RICEEffort:     copyInt(r.RICEEffort),

		Hypothesis:      r.Hypothesis,
		SuccessCriteria: r.SuccessCriteria,
		PrimaryMetric:   r.PrimaryMetric,

		SecondaryMetrics: normalizeList(r.SecondaryMetrics),
		TargetValue:      copyFloat(r.TargetValue),

		StartDate:    parseDate(r.StartDate),
		EndDate:      parseDate(r.EndDate),
		DurationDays: copyInt(r.DurationDays),
		SprintWeek:   copyInt(r.SprintWeek),
		CostInINR:    copyFloat(r.CostInINR),

		ResourcesNeeded: normalizeList(r.ResourcesNeeded),

		ResultsBefore:      normalizeText(r.ResultsBefore),
		ResultsAfter:       normalizeText(r.ResultsAfter),
		ActualResult:       copyFloat(r.ActualResult),
		Outcome:            outcome,
		Learnings:          normalizeText(r.Learnings),
		NextActions:        normalizeList(r.NextActions),
		RelatedExperiments: normalizeList(r.RelatedExperiments),
		DocumentationURL:   normalizeText(r.DocumentationURL),
		Tags:               normalizeList(r.Tags),
	}, nil
}

// UpdateExperimentRequest is a partial update. Every field is optional;
// only fields present in the payload are validated and applied.
// ExperimentID is immutable after creation and deliberately absent here.
//
// Date fields accept "" to clear the stored date.
type UpdateExperimentRequest struct {
	Name     *string `json:"name" validate:"omitnil,min=1"`
	Category *string `json:"category" validate:"omitnil,oneof=content events monetization product community_growth engagement"`
	Owner    *string `json:"owner" validate:"omitnil,min=1"`
	Status   *string `json:"status" validate:"omitnil,oneof=backlog planning scheduled live analyzing completed archived"`

	ImpactScore     *float64 `json:"impact_score" validate:"omitnil,gte=1,lte=10"`
	ConfidenceScore *float64 `json:"confidence_score" validate:"omitnil,gte=1,lte=10"`
	EaseScore       *float64 `json:"ease_score" validate:"omitnil,gte=1,lte=10"`
	ICEScore        *float64 `json:"ice_score"`

	RICEReach      *int     `json:"rice_reach" validate:"omitnil,gte=1,lte=100"`
	RICEImpact     *float64 `json:"rice_impact" validate:"omitnil,riceimpact"`
	RICEConfidence *int     `json:"rice_confidence" validate:"omitnil,gte=1,lte=100"`
	RICEEffort     *int     `json:"rice_effort" validate:"omitnil,gte=1,lte=100"`
	RICEScore      *float64 `json:"rice_score"`

	Hypothesis      *string `json:"hypothesis" validate:"omitnil,min=1"`
	SuccessCriteria *string `json:"success_criteria" validate:"omitnil,min=1"`
	PrimaryMetric   *string `json:"primary_metric" validate:"omitnil,min=1"`

	SecondaryMetrics *[]string `json:"secondary_metrics"`
	TargetValue      *float64  `json:"target_value"`

	StartDate    *string  `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      *string  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	DurationDays *int     `json:"duration_days" validate:"omitnil,gt=0"`
	SprintWeek   *int     `json:"sprint_week" validate:"omitnil,gt=0"`
	CostInINR    *float64 `json:"cost_in_inr" validate:"omitnil,gte=0"`

	ResourcesNeeded *[]string `json:"resources_needed"`

	ResultsBefore      *string   `json:"results_before"`
	ResultsAfter       *string   `json:"results_after"`
	ActualResult       *float64  `json:"actual_result"`
	Outcome            *string   `json:"outcome" validate:"omitnil,oneof=success fail inconclusive"`
	Learnings          *string   `json:"learnings"`
	NextActions        *[]string `json:"next_actions"`
	RelatedExperiments *[]string `json:"related_experiments"`
	DocumentationURL   *string   `json:"documentation_url" validate:"omitempty,url"`
	Tags               *[]string `json:"tags"`
}

// Validate checks the constraints on every field present in the payload.
func (r *UpdateExperimentRequest) Validate() error {
	return collectViolations(experimentValidate.Struct(r))
}

// Apply validates the partial payload and returns a copy of exp with the
// present fields applied.
//
// ICEScore is recomputed only when impact, confidence and ease are ALL
// present in the same update; a partial triplet never triggers
// recomputation, so the derived score is never computed against stale
// unseen values. An explicit ice_score in the payload overrides either
// way.
func (r *UpdateExperimentRequest) Apply(exp Experiment) (Experiment, error) {
	if err := r.Validate(); err != nil {
		return Experiment{}, err
	}

	if r.Name != nil {
		exp.Name = *r.Name
	}
	if r.Category != nil {
		exp.Category = Category(*r.Category)
	}
	if r.Owner != nil {
		exp.Owner = *r.Owner
	}
	if r.Status != nil {
		exp.Status = Status(*r.Status)
	}

	if r.ImpactScore != nil {
		exp.ImpactScore = *r.ImpactScore
	}
	if r.ConfidenceScore != nil {
		exp.ConfidenceScore = *r.ConfidenceScore
	}
	if r.EaseScore != nil {
		exp.EaseScore = *r.EaseScore
	}
	if r.ImpactScore != nil && r.ConfidenceScore != nil && r.EaseScore != nil {
		exp.ICEScore = scoring.ICE(*r.ImpactScore, *r.ConfidenceScore, *r.EaseScore)
	}
	if r.ICEScore != nil {
		exp.ICEScore = *r.ICEScore
	}

	if r.RICEReach != nil {
		exp.RICEReach = copyInt(r.RICEReach)
	}
	if r.RICEImpact != nil {
		exp.RICEImpact = copyFloat(r.RICEImpact)
	}
	if r.RICEConfidence != nil {
		exp.RICEConfidence = copyInt(r.RICEConfidence)
	}
	if r.RICEEffort != nil {
		exp.RICEEffort = copyInt(r.RICEEffort)
	}
	if r.RICEScore != nil {
		exp.RICEScore = copyFloat(r.RICEScore)
	}

	if r.Hypothesis != nil {
		exp.Hypothesis = *r.Hypothesis
	}
	if r.SuccessCriteria != nil {
		exp.SuccessCriteria = *r.SuccessCriteria
	}
	if r.PrimaryMetric != nil {
		exp.PrimaryMetric = *r.PrimaryMetric
	}

	if r.SecondaryMetrics != nil {
		exp.SecondaryMetrics = normalizeList(*r.SecondaryMetrics)
	}
	if r.TargetValue != nil {
		exp.TargetValue = copyFloat(r.TargetValue)
	}

	if r.StartDate != nil {
		exp.StartDate = parseDate(*r.StartDate)
	}
	if r.EndDate != nil {
		exp.EndDate = parseDate(*r.EndDate)
	}
	if r.DurationDays != nil {
		exp.DurationDays = copyInt(r.DurationDays)
	}
	if r.SprintWeek != nil {
		exp.SprintWeek = copyInt(r.SprintWeek)
	}
	if r.CostInINR != nil {
		exp.CostInINR = copyFloat(r.CostInINR)
	}

	if r.ResourcesNeeded != nil {
		exp.ResourcesNeeded = normalizeList(*r.ResourcesNeeded)
	}

	if r.ResultsBefore != nil {
		exp.ResultsBefore = normalizeText(r.ResultsBefore)
	}
	if r.ResultsAfter != nil {
		exp.ResultsAfter = normalizeText(r.ResultsAfter)
	}
	if r.ActualResult != nil {
		exp.ActualResult = copyFloat(r.ActualResult)
	}
	if r.Outcome != nil {
		o := Outcome(*r.Outcome)
		exp.Outcome = &o
	}
	if r.Learnings != nil {
		exp.Learnings = normalizeText(r.Learnings)
	}
	if r.NextActions != nil {
		exp.NextActions = normalizeList(*r.NextActions)
	}
	if r.RelatedExperiments != nil {
		exp.RelatedExperiments = normalizeList(*r.RelatedExperiments)
	}
	if r.DocumentationURL != nil {
		exp.DocumentationURL = normalizeText(r.DocumentationURL)
	}
	if r.Tags != nil {
		exp.Tags = normalizeList(*r.Tags)
	}

	return exp, nil
}

// SetsStatus reports whether the payload sets the given status. Used by
// the update flow to trigger the completed-experiment Drive export.
func (r *UpdateExperimentRequest) SetsStatus(s Status) bool {
	return r.Status != nil && Status(*r.Status) == s
}

// SplitFreeText splits delimited free text into list elements, trimming
// whitespace and dropping empties. Newline, comma and semicolon all
// delimit, so pasted form input in any of those shapes works.
func SplitFreeText(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == ',' || r == ';'
	})
	return normalizeList(parts)
}

// normalizeList trims every element and drops empties. Always returns a
// non-nil slice so list fields default to empty, never null.
func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// normalizeText trims optional free text; empty after trimming means
// absent.
func normalizeText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	// Format already validated via the datetime tag.
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// collectViolations converts validator errors into a ValidationError
// carrying every violation. A nil input stays nil.
func collectViolations(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	violations := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, FieldViolation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: violationMessage(fe),
		})
	}
	return &ValidationError{Violations: violations}
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "riceimpact":
		return "must be 0.25, 0.5, 1, 2, or 3"
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be > %s", fe.Param())
	case "min":
		return "must not be empty"
	case "datetime":
		return "must be a calendar date in YYYY-MM-DD form"
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed the %s constraint", fe.Tag())
	}
}
