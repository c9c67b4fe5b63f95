// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analytics

import (
	"time"

	"github.com/growthdesk/growthdesk/services/dashboard/datatypes"
)

// Summary is the headline card block on the dashboard.
type Summary struct {
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"by_status"`
	SuccessRate float64        `json:"success_rate"`
	Velocity7d  int            `json:"velocity_7d"`
}

// Overview builds the headline summary. SuccessRate counts every
// experiment with outcome success against the whole collection (an
// in-flight experiment counts against the denominator, unlike the
// outcome distribution). Velocity7d counts experiments touched at or
// after now minus seven days, boundary inclusive; now is injected so
// the window is testable.
func Overview(exps []datatypes.Experiment, now time.Time) Summary {
	s := Summary{ByStatus: map[string]int{}}
	s.Total = len(exps)
	if s.Total == 0 {
		return s
	}

	cutoff := now.Add(-7 * 24 * time.Hour)
	successes := 0
	for _, exp := range exps {
		s.ByStatus[string(exp.Status)]++
		if exp.Outcome != nil && *exp.Outcome == datatypes.OutcomeSuccess {
			successes++
		}
		if !exp.UpdatedAt.Before(cutoff) {
			s.Velocity7d++
		}
	}
	s.SuccessRate = float64(successes) / float64(s.Total)
	return s
}
