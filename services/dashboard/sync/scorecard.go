// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sync

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/growthdesk/growthdesk/services/dashboard/datatypes"
)

// Scorecard renders the markdown document exported to Drive: scoring,
// timeline, results, learnings, and resourcing for one experiment.
// Absent optionals render as "N/A" so the document shape is stable.
func Scorecard(exp datatypes.Experiment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Experiment Scorecard: %s\n\n", exp.Name)
	fmt.Fprintf(&b, "**Experiment ID:** %s  \n", exp.ExperimentID)
	fmt.Fprintf(&b, "**Status:** %s  \n", exp.Status)
	fmt.Fprintf(&b, "**Category:** %s  \n", exp.Category.Label())
	fmt.Fprintf(&b, "**Owner:** %s  \n", exp.Owner)
	fmt.Fprintf(&b, "**Created:** %s  \n", scorecardDate(&exp.CreatedAt))
	fmt.Fprintf(&b, "**Last Updated:** %s\n\n", scorecardDate(&exp.UpdatedAt))

	b.WriteString("---\n\n## Scoring\n\n### ICE Score\n")
	fmt.Fprintf(&b, "- **ICE Score:** %s\n", trimFloat(exp.ICEScore))
	fmt.Fprintf(&b, "- **Impact:** %s/10\n", trimFloat(exp.ImpactScore))
	fmt.Fprintf(&b, "- **Confidence:** %s/10\n", trimFloat(exp.ConfidenceScore))
	fmt.Fprintf(&b, "- **Ease:** %s/10\n\n", trimFloat(exp.EaseScore))

	b.WriteString("### RICE Score\n")
	fmt.Fprintf(&b, "- **RICE Score:** %s\n", scorecardScore(exp.RICEScore))
	fmt.Fprintf(&b, "- **Reach:** %s\n", intOrNA(exp.RICEReach))
	fmt.Fprintf(&b, "- **Impact:** %s\n", floatOrNA(exp.RICEImpact))
	fmt.Fprintf(&b, "- **Confidence:** %s\n", percentOrNA(exp.RICEConfidence))
	fmt.Fprintf(&b, "- **Effort:** %s person-weeks\n\n", intOrNA(exp.RICEEffort))

	b.WriteString("---\n\n## Experiment Details\n\n")
	fmt.Fprintf(&b, "**Hypothesis:**  \n%s\n\n", exp.Hypothesis)
	fmt.Fprintf(&b, "**Success Criteria:**  \n%s\n\n", exp.SuccessCriteria)
	fmt.Fprintf(&b, "**Primary Metric:** %s  \n", exp.PrimaryMetric)
	fmt.Fprintf(&b, "**Target Value:** %s\n\n", floatOrNA(exp.TargetValue))
	fmt.Fprintf(&b, "**Secondary Metrics:**\n%s\n\n", bulletList(exp.SecondaryMetrics))

	b.WriteString("---\n\n## Timeline\n\n")
	fmt.Fprintf(&b, "**Start Date:** %s  \n", scorecardDate(exp.StartDate))
	fmt.Fprintf(&b, "**End Date:** %s  \n", scorecardDate(exp.EndDate))
	fmt.Fprintf(&b, "**Duration:** %s days  \n", intOrNA(exp.DurationDays))
	fmt.Fprintf(&b, "**Sprint Week:** %s\n\n", intOrNA(exp.SprintWeek))

	b.WriteString("---\n\n## Results\n\n")
	fmt.Fprintf(&b, "**Outcome:** %s\n\n", outcomeBadge(exp.Outcome))
	fmt.Fprintf(&b, "**Results Before:**  \n%s\n\n", textOrNA(exp.ResultsBefore))
	fmt.Fprintf(&b, "**Results After:**  \n%s\n\n", textOrNA(exp.ResultsAfter))
	fmt.Fprintf(&b, "**Actual Result:** %s\n\n", scorecardScore(exp.ActualResult))

	b.WriteString("---\n\n## Learnings\n\n")
	if exp.Learnings != nil {
		fmt.Fprintf(&b, "%s\n\n", *exp.Learnings)
	} else {
		b.WriteString("No learnings documented yet.\n\n")
	}

	b.WriteString("---\n\n## Next Actions\n\n")
	fmt.Fprintf(&b, "%s\n\n", bulletList(exp.NextActions))

	b.WriteString("---\n\n## Resources\n\n")
	fmt.Fprintf(&b, "**Budget:** ₹%s  \n", costOrNA(exp.CostInINR))
	fmt.Fprintf(&b, "**Resources Needed:**\n%s\n\n", bulletList(exp.ResourcesNeeded))
	fmt.Fprintf(&b, "**Related Experiments:**\n%s\n\n", bulletList(exp.RelatedExperiments))
	fmt.Fprintf(&b, "**Tags:** %s\n\n", joinOrNone(exp.Tags))
	fmt.Fprintf(&b, "**Documentation:** %s\n", textOrNA(exp.DocumentationURL))

	return b.String()
}

func scorecardDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format("Jan 2, 2006")
}

func scorecardScore(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func intOrNA(v *int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v)
}

func floatOrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return trimFloat(*v)
}

func percentOrNA(v *int) string {
	if v == nil {
		return "N/A"
	}
	return strconv.Itoa(*v) + "%"
}

func textOrNA(v *string) string {
	if v == nil {
		return "N/A"
	}
	return *v
}

func costOrNA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return groupThousands(*v)
}

// groupThousands renders 1234567.5 as "1,234,567.5".
func groupThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}
	var out []byte
	for i, d := range []byte(intPart) {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}
	result := string(out)
	if neg {
		result = "-" + result
	}
	if hasFrac {
		result += "." + fracPart
	}
	return result
}

func outcomeBadge(o *datatypes.Outcome) string {
	if o == nil {
		return "Pending"
	}
	return o.Label()
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
