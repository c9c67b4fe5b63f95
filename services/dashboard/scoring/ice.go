// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scoring implements the ICE and RICE prioritization formulas.
//
// # Description
//
// Both scores are pure arithmetic over validated inputs. Validation of
// ranges ([1,10] for ICE factors, [1,100] for RICE reach/confidence/effort,
// the discrete RICE impact set) is the caller's job; nothing in this
// package clamps or rejects.
//
// Thresholds for the priority bands and decisions are fixed design
// constants, not configuration.
package scoring

// ICE score thresholds. Strict greater-than on both boundaries: a score
// of exactly 200 is MEDIUM and a score of exactly 100 is LOW.
const (
	iceHighThreshold   = 200
	iceMediumThreshold = 100
)

// Priority is the categorical band for an ICE score.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Recommendation labels paired one-to-one with the priority bands.
const (
	RecommendRunThisWeek  = "RUN THIS WEEK"
	RecommendQueueNext    = "QUEUE FOR NEXT WEEK"
	RecommendDeprioritize = "DEPRIORITIZE"
)

// ICE returns impact * confidence * ease.
//
// With each factor in [1,10] the product lands in [1,1000]. The function
// is symmetric under any permutation of its arguments.
func ICE(impact, confidence, ease float64) float64 {
	return impact * confidence * ease
}

// ICEPriority maps an ICE score to its band.
func ICEPriority(score float64) Priority {
	switch {
	case score > iceHighThreshold:
		return PriorityHigh
	case score > iceMediumThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// ICERecommendation maps an ICE score to the scheduling recommendation
// shown on ranking views. Same thresholds as ICEPriority.
func ICERecommendation(score float64) string {
	switch ICEPriority(score) {
	case PriorityHigh:
		return RecommendRunThisWeek
	case PriorityMedium:
		return RecommendQueueNext
	default:
		return RecommendDeprioritize
	}
}
