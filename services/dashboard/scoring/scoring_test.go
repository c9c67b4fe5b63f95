// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scoring

import (
	"testing"
)

func TestICE_ProductAndSymmetry(t *testing.T) {
	for impact := 1.0; impact <= 10; impact++ {
		for confidence := 1.0; confidence <= 10; confidence += 3 {
			for ease := 1.0; ease <= 10; ease += 3 {
				want := impact * confidence * ease
				if got := ICE(impact, confidence, ease); got != want {
					t.Fatalf("ICE(%v,%v,%v) = %v, want %v", impact, confidence, ease, got, want)
				}
				// Symmetric under permutation.
				if ICE(ease, impact, confidence) != want || ICE(confidence, ease, impact) != want {
					t.Fatalf("ICE not symmetric for (%v,%v,%v)", impact, confidence, ease)
				}
			}
		}
	}
}

func TestICEPriority_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  Priority
	}{
		{201, PriorityHigh},
		{200, PriorityMedium},
		{101, PriorityMedium},
		{100, PriorityLow},
		{1, PriorityLow},
		{1000, PriorityHigh},
	}
	for _, tc := range cases {
		if got := ICEPriority(tc.score); got != tc.want {
			t.Errorf("ICEPriority(%v) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestICERecommendation_MapsOneToOne(t *testing.T) {
	cases := map[float64]string{
		201: RecommendRunThisWeek,
		200: RecommendQueueNext,
		101: RecommendQueueNext,
		100: RecommendDeprioritize,
	}
	for score, want := range cases {
		if got := ICERecommendation(score); got != want {
			t.Errorf("ICERecommendation(%v) = %q, want %q", score, got, want)
		}
	}
}

func TestRICE_KnownValue(t *testing.T) {
	// (50 * 1 * 0.5) / 10 = 2.5
	got := RICE(50, 1, 50, 10)
	if got != 2.5 {
		t.Fatalf("RICE(50,1,50,10) = %v, want 2.5", got)
	}
	if d := RICEDecision(&got); d != DecisionValidateMore {
		t.Fatalf("RICEDecision(2.5) = %v, want %v", d, DecisionValidateMore)
	}
}

func TestRICEFromInputs_NilHandling(t *testing.T) {
	reach, confidence, effort := 50, 50, 10
	impact := 1.0
	zero := 0

	t.Run("complete inputs produce a score", func(t *testing.T) {
		score := RICEFromInputs(&reach, &impact, &confidence, &effort)
		if score == nil || *score != 2.5 {
			t.Fatalf("got %v, want 2.5", score)
		}
	})

	t.Run("zero effort is nil, not zero", func(t *testing.T) {
		if score := RICEFromInputs(&reach, &impact, &confidence, &zero); score != nil {
			t.Fatalf("got %v, want nil", *score)
		}
	})

	t.Run("any missing input is nil", func(t *testing.T) {
		if RICEFromInputs(nil, &impact, &confidence, &effort) != nil {
			t.Error("missing reach should yield nil")
		}
		if RICEFromInputs(&reach, nil, &confidence, &effort) != nil {
			t.Error("missing impact should yield nil")
		}
		if RICEFromInputs(&reach, &impact, nil, &effort) != nil {
			t.Error("missing confidence should yield nil")
		}
		if RICEFromInputs(&reach, &impact, &confidence, nil) != nil {
			t.Error("missing effort should yield nil")
		}
	})
}

func TestRICEDecision_Boundaries(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	cases := []struct {
		score *float64
		want  Decision
	}{
		{nil, DecisionNotApplicable},
		{f(5.01), DecisionBuild},
		{f(5), DecisionValidateMore},
		{f(2.01), DecisionValidateMore},
		{f(2), DecisionDontBuild},
		{f(0), DecisionDontBuild},
	}
	for _, tc := range cases {
		if got := RICEDecision(tc.score); got != tc.want {
			t.Errorf("RICEDecision(%v) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestValidRICEImpact(t *testing.T) {
	for _, v := range []float64{0.25, 0.5, 1, 2, 3} {
		if !ValidRICEImpact(v) {
			t.Errorf("ValidRICEImpact(%v) = false, want true", v)
		}
	}
	for _, v := range []float64{0, 0.3, 1.5, 4, -1} {
		if ValidRICEImpact(v) {
			t.Errorf("ValidRICEImpact(%v) = true, want false", v)
		}
	}
}
