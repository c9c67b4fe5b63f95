// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scoring

// RICE decision thresholds. Strict greater-than, same convention as ICE.
const (
	riceBuildThreshold    = 5
	riceValidateThreshold = 2
)

// Decision is the categorical outcome for a RICE score.
type Decision string

const (
	DecisionBuild         Decision = "BUILD"
	DecisionValidateMore  Decision = "VALIDATE MORE"
	DecisionDontBuild     Decision = "DONT BUILD"
	DecisionNotApplicable Decision = "NOT APPLICABLE"
)

// RICEImpactValues is the discrete set of legal RICE impact multipliers.
var RICEImpactValues = []float64{0.25, 0.5, 1, 2, 3}

// ValidRICEImpact reports whether v is one of the legal impact multipliers.
// Anything else is a validation failure, never a rounding target.
func ValidRICEImpact(v float64) bool {
	for _, allowed := range RICEImpactValues {
		if v == allowed {
			return true
		}
	}
	return false
}

// RICE returns (reach * impact * confidencePct/100) / effort.
//
// Pure formula; the caller guarantees effort > 0. For the nil-aware
// variant used during normalization see RICEFromInputs.
func RICE(reach, impact, confidencePct, effort float64) float64 {
	return reach * impact * (confidencePct / 100) / effort
}

// RICEFromInputs computes the RICE score from optional inputs.
//
// Returns nil when any input is absent or effort is zero; a RICE score is
// defined only over the complete quadruple. It never returns a zero score
// for missing data, so "no score" stays distinguishable from "score 0".
func RICEFromInputs(reach *int, impact *float64, confidencePct, effort *int) *float64 {
	if reach == nil || impact == nil || confidencePct == nil || effort == nil {
		return nil
	}
	if *effort == 0 {
		return nil
	}
	score := RICE(float64(*reach), *impact, float64(*confidencePct), float64(*effort))
	return &score
}

// RICEDecision maps a RICE score to a build decision.
// A nil score (incomplete inputs) is NOT APPLICABLE.
func RICEDecision(score *float64) Decision {
	if score == nil {
		return DecisionNotApplicable
	}
	switch {
	case *score > riceBuildThreshold:
		return DecisionBuild
	case *score > riceValidateThreshold:
		return DecisionValidateMore
	default:
		return DecisionDontBuild
	}
}
