// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package analytics computes the chart datasets for the dashboard.
//
// # Description
//
// Every function is pure and total: given the full experiment collection
// (input order irrelevant) it returns a presentation-ready dataset and
// never fails. Empty collections yield empty or zero-valued results,
// except where a chart needs its fixed bucket labels regardless (time to
// learning), which distinguishes "no data" from "all in one bucket".
//
// Ordering within each dataset is deterministic: count/roi sorts break
// ties on the label so repeated renders are stable.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/growthdesk/growthdesk/services/dashboard/datatypes"
)

// DefaultTargetThreshold is the success-rate target drawn on the trend
// chart when the caller does not supply one.
const DefaultTargetThreshold = 0.70

// StatusCount is one slice of the status distribution.
type StatusCount struct {
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// StatusDistribution counts experiments per status, title-cased, sorted
// descending by count. Percentage denominator is the full collection.
func StatusDistribution(exps []datatypes.Experiment) []StatusCount {
	if len(exps) == 0 {
		return []StatusCount{}
	}
	counts := map[datatypes.Status]int{}
	for _, exp := range exps {
		counts[exp.Status]++
	}
	total := len(exps)
	out := make([]StatusCount, 0, len(counts))
	for status, count := range counts {
		out = append(out, StatusCount{
			Status:     status.Label(),
			Count:      count,
			Percentage: float64(count) / float64(total) * 100,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Status < out[j].Status
	})
	return out
}

// CategoryCount is one slice of the category distribution.
type CategoryCount struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CategoryDistribution counts experiments per category with underscores
// turned into spaces, sorted descending by count.
func CategoryDistribution(exps []datatypes.Experiment) []CategoryCount {
	if len(exps) == 0 {
		return []CategoryCount{}
	}
	counts := map[datatypes.Category]int{}
	for _, exp := range exps {
		counts[exp.Category]++
	}
	total := len(exps)
	out := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		out = append(out, CategoryCount{
			Category:   category.Label(),
			Count:      count,
			Percentage: float64(count) / float64(total) * 100,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// ScoreBucket is one row of the score distribution: ten rows total, five
// ICE ranges then five RICE ranges, each carrying a zero for the metric
// it does not represent.
type ScoreBucket struct {
	Range     string `json:"range"`
	ICECount  int    `json:"ice_count"`
	RICECount int    `json:"rice_count"`
}

var (
	iceBucketLabels  = []string{"0-100", "101-200", "201-400", "401-600", "600+"}
	iceBucketUppers  = []float64{100, 200, 400, 600}
	riceBucketLabels = []string{"0-2", "2.1-5", "5.1-10", "10.1-20", "20+"}
	riceBucketUppers = []float64{2, 5, 10, 20}
)

// ScoreDistribution buckets experiments into the fixed ICE and RICE
// ranges. Upper boundaries are inclusive (ICE 100 lands in "0-100", 101
// in "101-200"). Experiments without a RICE score are excluded from the
// RICE buckets entirely.
func ScoreDistribution(exps []datatypes.Experiment) []ScoreBucket {
	iceCounts := make([]int, len(iceBucketLabels))
	riceCounts := make([]int, len(riceBucketLabels))

	for _, exp := range exps {
		iceCounts[bucketIndex(exp.ICEScore, iceBucketUppers)]++
		if exp.RICEScore != nil {
			riceCounts[bucketIndex(*exp.RICEScore, riceBucketUppers)]++
		}
	}

	out := make([]ScoreBucket, 0, len(iceBucketLabels)+len(riceBucketLabels))
	for i, label := range iceBucketLabels {
		out = append(out, ScoreBucket{Range: "ICE " + label, ICECount: iceCounts[i]})
	}
	for i, label := range riceBucketLabels {
		out = append(out, ScoreBucket{Range: "RICE " + label, RICECount: riceCounts[i]})
	}
	return out
}

func bucketIndex(score float64, uppers []float64) int {
	for i, upper := range uppers {
		if score <= upper {
			return i
		}
	}
	return len(uppers)
}

// OutcomeCount is one slice of the outcome distribution.
type OutcomeCount struct {
	Outcome    string  `json:"outcome"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// OutcomeDistribution counts outcomes across completed experiments that
// have one. The percentage denominator is the count of those qualifying
// experiments, not the full collection. Empty when nothing qualifies.
func OutcomeDistribution(exps []datatypes.Experiment) []OutcomeCount {
	counts := map[datatypes.Outcome]int{}
	total := 0
	for _, exp := range exps {
		if exp.Status != datatypes.StatusCompleted || exp.Outcome == nil {
			continue
		}
		counts[*exp.Outcome]++
		total++
	}
	if total == 0 {
		return []OutcomeCount{}
	}
	out := make([]OutcomeCount, 0, len(counts))
	for outcome, count := range counts {
		out = append(out, OutcomeCount{
			Outcome:    outcome.Label(),
			Count:      count,
			Percentage: float64(count) / float64(total) * 100,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Outcome < out[j].Outcome
	})
	return out
}

// TrendPoint is one experiment played back in date order on the
// success-rate trend.
type TrendPoint struct {
	Date            time.Time `json:"date"`
	SuccessRate     float64   `json:"success_rate"`
	TargetThreshold float64   `json:"target_threshold"`
}

// SuccessRateTrend replays completed experiments in effective-date order
// and emits the running cumulative success rate after each one, paired
// with the constant target threshold. One point per qualifying
// experiment, not per distinct date.
//
// The effective date is endDate, falling back to updatedAt, falling back
// to createdAt; an experiment with none of these sorts as the epoch.
func SuccessRateTrend(exps []datatypes.Experiment, targetThreshold float64) []TrendPoint {
	completed := make([]datatypes.Experiment, 0, len(exps))
	for _, exp := range exps {
		if exp.Status == datatypes.StatusCompleted {
			completed = append(completed, exp)
		}
	}
	if len(completed) == 0 {
		return []TrendPoint{}
	}

	sort.SliceStable(completed, func(i, j int) bool {
		return effectiveDate(completed[i]).Before(effectiveDate(completed[j]))
	})

	points := make([]TrendPoint, 0, len(completed))
	successes := 0
	for i, exp := range completed {
		if exp.Outcome != nil && *exp.Outcome == datatypes.OutcomeSuccess {
			successes++
		}
		points = append(points, TrendPoint{
			Date:            effectiveDate(exp),
			SuccessRate:     float64(successes) / float64(i+1),
			TargetThreshold: targetThreshold,
		})
	}
	return points
}

// effectiveDate picks the date an experiment "counts" on:
// endDate > updatedAt > createdAt > epoch.
func effectiveDate(exp datatypes.Experiment) time.Time {
	switch {
	case exp.EndDate != nil:
		return *exp.EndDate
	case !exp.UpdatedAt.IsZero():
		return exp.UpdatedAt
	case !exp.CreatedAt.IsZero():
		return exp.CreatedAt
	default:
		return time.Unix(0, 0).UTC()
	}
}

// DurationBucket is one row of the time-to-learning distribution.
type DurationBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

var learningBucketLabels = []string{"0-7 days", "8-14 days", "15-30 days", "31-60 days", "60+ days"}
var learningBucketUppers = []float64{7, 14, 30, 60}

// TimeToLearning buckets completed, fully dated experiments by whole-day
// duration (ceiling of end minus start). All five bucket rows are always
// returned, at zero when nothing qualifies.
func TimeToLearning(exps []datatypes.Experiment) []DurationBucket {
	counts := make([]int, len(learningBucketLabels))
	for _, exp := range exps {
		if exp.Status != datatypes.StatusCompleted || exp.StartDate == nil || exp.EndDate == nil {
			continue
		}
		days := math.Ceil(exp.EndDate.Sub(*exp.StartDate).Hours() / 24)
		counts[bucketIndex(days, learningBucketUppers)]++
	}
	out := make([]DurationBucket, len(learningBucketLabels))
	for i, label := range learningBucketLabels {
		out[i] = DurationBucket{Range: label, Count: counts[i]}
	}
	return out
}

// CategoryROI is one row of the ROI-by-category dataset.
type CategoryROI struct {
	Category        string  `json:"category"`
	TotalCost       float64 `json:"total_cost"`
	TotalValue      float64 `json:"total_value"`
	ROI             float64 `json:"roi"`
	ExperimentCount int     `json:"experiment_count"`
}

// ROIByCategory sums cost and realized value across completed
// experiments per category (nil cost/value count as zero) and derives
// roi% = (value-cost)/cost*100 when cost is positive, else 0. Sorted
// descending by roi.
func ROIByCategory(exps []datatypes.Experiment) []CategoryROI {
	type acc struct {
		cost, value float64
		count       int
	}
	byCategory := map[string]*acc{}
	for _, exp := range exps {
		if exp.Status != datatypes.StatusCompleted {
			continue
		}
		label := exp.Category.Label()
		a := byCategory[label]
		if a == nil {
			a = &acc{}
			byCategory[label] = a
		}
		if exp.CostInINR != nil {
			a.cost += *exp.CostInINR
		}
		if exp.ActualResult != nil {
			a.value += *exp.ActualResult
		}
		a.count++
	}

	out := make([]CategoryROI, 0, len(byCategory))
	for label, a := range byCategory {
		roi := 0.0
		if a.cost > 0 {
			roi = (a.value - a.cost) / a.cost * 100
		}
		out = append(out, CategoryROI{
			Category:        label,
			TotalCost:       a.cost,
			TotalValue:      a.value,
			ROI:             roi,
			ExperimentCount: a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ROI != out[j].ROI {
			return out[i].ROI > out[j].ROI
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// DailyCount is one calendar day on the experiments-over-time chart.
type DailyCount struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Live      int    `json:"live"`
	Planning  int    `json:"planning"`
}

// ExperimentsOverTime groups experiments by the UTC calendar date of
// their creation, counting totals and the completed/live/planning
// statuses per day, sorted ascending by date.
func ExperimentsOverTime(exps []datatypes.Experiment) []DailyCount {
	if len(exps) == 0 {
		return []DailyCount{}
	}
	byDate := map[string]*DailyCount{}
	for _, exp := range exps {
		date := exp.CreatedAt.UTC().Format("2006-01-02")
		day := byDate[date]
		if day == nil {
			day = &DailyCount{Date: date}
			byDate[date] = day
		}
		day.Total++
		switch exp.Status {
		case datatypes.StatusCompleted:
			day.Completed++
		case datatypes.StatusLive:
			day.Live++
		case datatypes.StatusPlanning:
			day.Planning++
		}
	}
	out := make([]DailyCount, 0, len(byDate))
	for _, day := range byDate {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
