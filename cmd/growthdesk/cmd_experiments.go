// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/growthdesk/growthdesk/services/dashboard/datatypes"
)

var (
	createFile       string
	createSyncNotion bool
	completeOutcome  string
	listJSONOutput   bool
)

var experimentsCmd = &cobra.Command{
	Use:   "experiments",
	Short: "List, inspect, and write experiments",
}

var listExperimentsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all experiments, newest update first",
	RunE:  runListExperiments,
}

var getExperimentCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one experiment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Data datatypes.Experiment `json:"data"`
		}
		if err := apiRequest(http.MethodGet, "/v1/experiments/"+args[0], nil, &resp); err != nil {
			return err
		}
		return printJSON(resp.Data)
	},
}

var createExperimentCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an experiment from a YAML file",
	Long: `Creates an experiment from a YAML definition.

List-ish fields (secondary_metrics, resources_needed, next_actions,
related_experiments, tags) accept free text: entries separated by
newlines, commas, or semicolons.

Example definition:

  experiment_id: EXP-042
  name: Onboarding checklist
  category: engagement
  owner: priya
  impact_score: 7
  confidence_score: 6
  ease_score: 5
  hypothesis: a checklist raises activation
  success_criteria: signup completion over 50%
  primary_metric: signup_completion
  secondary_metrics: |
    d7_retention
    invites_sent
  tags: onboarding, q1`,
	RunE: runCreateExperiment,
}

var completeExperimentCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Mark an experiment completed, exporting its scorecard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{"status": "completed"}
		if completeOutcome != "" {
			body["outcome"] = completeOutcome
		}
		var resp struct {
			Data      datatypes.Experiment `json:"data"`
			DriveSync *struct {
				Success bool   `json:"success"`
				URL     string `json:"url"`
				Error   string `json:"error"`
			} `json:"drive_sync"`
		}
		if err := apiRequest(http.MethodPatch, "/v1/experiments/"+args[0], body, &resp); err != nil {
			return err
		}
		fmt.Printf("Completed %s (%s)\n", resp.Data.ExperimentID, resp.Data.Name)
		if resp.DriveSync != nil {
			if resp.DriveSync.Success {
				fmt.Printf("Scorecard exported: %s\n", resp.DriveSync.URL)
			} else {
				fmt.Printf("Scorecard export failed: %s\n", resp.DriveSync.Error)
			}
		}
		return nil
	},
}

func init() {
	listExperimentsCmd.Flags().BoolVar(&listJSONOutput, "json", false,
		"Output as JSON for scripting")
	createExperimentCmd.Flags().StringVarP(&createFile, "file", "f", "",
		"YAML file with the experiment definition (required)")
	_ = createExperimentCmd.MarkFlagRequired("file")
	createExperimentCmd.Flags().BoolVar(&createSyncNotion, "sync-notion", false,
		"Mirror the new experiment to Notion after the write")
	completeExperimentCmd.Flags().StringVar(&completeOutcome, "outcome", "",
		"Outcome to record: success, fail, or inconclusive")
}

func runListExperiments(cmd *cobra.Command, args []string) error {
	var resp struct {
		Data    []datatypes.Experiment `json:"data"`
		Summary struct {
			Total       int     `json:"total"`
			SuccessRate float64 `json:"success_rate"`
			Velocity7d  int     `json:"velocity_7d"`
		} `json:"summary"`
	}
	if err := apiRequest(http.MethodGet, "/v1/experiments", nil, &resp); err != nil {
		return err
	}
	if listJSONOutput {
		return printJSON(resp)
	}

	fmt.Printf("%-38s %-10s %-18s %-10s %8s  %s\n",
		"ID", "EXP", "CATEGORY", "STATUS", "ICE", "NAME")
	for _, exp := range resp.Data {
		fmt.Printf("%-38s %-10s %-18s %-10s %8.0f  %s\n",
			exp.ID, exp.ExperimentID, exp.Category, exp.Status, exp.ICEScore, exp.Name)
	}
	fmt.Printf("\n%d experiments, success rate %.0f%%, %d touched in the last 7 days\n",
		resp.Summary.Total, resp.Summary.SuccessRate*100, resp.Summary.Velocity7d)
	return nil
}

// experimentFile is the YAML shape accepted by create --file. It tracks
// the API's create payload, except that list fields are free text.
type experimentFile struct {
	ExperimentID string `yaml:"experiment_id"`
	Name         string `yaml:"name"`
	Category     string `yaml:"category"`
	Owner        string `yaml:"owner"`
	Status       string `yaml:"status"`

	ImpactScore     float64  `yaml:"impact_score"`
	ConfidenceScore float64  `yaml:"confidence_score"`
	EaseScore       float64  `yaml:"ease_score"`
	ICEScore        *float64 `yaml:"ice_score"`

	RICEReach      *int     `yaml:"rice_reach"`
	RICEImpact     *float64 `yaml:"rice_impact"`
	RICEConfidence *int     `yaml:"rice_confidence"`
	RICEEffort     *int     `yaml:"rice_effort"`

	Hypothesis      string `yaml:"hypothesis"`
	SuccessCriteria string `yaml:"success_criteria"`
	PrimaryMetric   string `yaml:"primary_metric"`

	SecondaryMetrics string   `yaml:"secondary_metrics"`
	TargetValue      *float64 `yaml:"target_value"`

	StartDate    string   `yaml:"start_date"`
	EndDate      string   `yaml:"end_date"`
	DurationDays *int     `yaml:"duration_days"`
	SprintWeek   *int     `yaml:"sprint_week"`
	CostInINR    *float64 `yaml:"cost_in_inr"`

	ResourcesNeeded    string  `yaml:"resources_needed"`
	NextActions        string  `yaml:"next_actions"`
	RelatedExperiments string  `yaml:"related_experiments"`
	Tags               string  `yaml:"tags"`
	DocumentationURL   *string `yaml:"documentation_url"`
}

func (f experimentFile) toRequest(syncNotion bool) datatypes.CreateExperimentRequest {
	return datatypes.CreateExperimentRequest{
		ExperimentID:       f.ExperimentID,
		Name:               f.Name,
		Category:           f.Category,
		Owner:              f.Owner,
		Status:             f.Status,
		ImpactScore:        f.ImpactScore,
		ConfidenceScore:    f.ConfidenceScore,
		EaseScore:          f.EaseScore,
		ICEScore:           f.ICEScore,
		RICEReach:          f.RICEReach,
		RICEImpact:         f.RICEImpact,
		RICEConfidence:     f.RICEConfidence,
		RICEEffort:         f.RICEEffort,
		Hypothesis:         f.Hypothesis,
		SuccessCriteria:    f.SuccessCriteria,
		PrimaryMetric:      f.PrimaryMetric,
		SecondaryMetrics:   datatypes.SplitFreeText(f.SecondaryMetrics),
		TargetValue:        f.TargetValue,
		StartDate:          f.StartDate,
		EndDate:            f.EndDate,
		DurationDays:       f.DurationDays,
		SprintWeek:         f.SprintWeek,
		CostInINR:          f.CostInINR,
		ResourcesNeeded:    datatypes.SplitFreeText(f.ResourcesNeeded),
		NextActions:        datatypes.SplitFreeText(f.NextActions),
		RelatedExperiments: datatypes.SplitFreeText(f.RelatedExperiments),
		Tags:               datatypes.SplitFreeText(f.Tags),
		DocumentationURL:   f.DocumentationURL,
		SyncToNotion:       syncNotion,
	}
}

func runCreateExperiment(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(createFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", createFile, err)
	}
	var file experimentFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse %s: %w", createFile, err)
	}

	req := file.toRequest(createSyncNotion)
	// Validate locally first so a bad file fails fast with every
	// violation listed, without needing the server up.
	if err := req.Validate(); err != nil {
		return err
	}

	var resp struct {
		Data       datatypes.Experiment `json:"data"`
		NotionSync *struct {
			Success bool   `json:"success"`
			Ref     string `json:"ref"`
			Error   string `json:"error"`
		} `json:"notion_sync"`
	}
	if err := apiRequest(http.MethodPost, "/v1/experiments", req, &resp); err != nil {
		return err
	}

	fmt.Printf("Created %s (%s), ICE %.0f\n",
		resp.Data.ExperimentID, resp.Data.ID, resp.Data.ICEScore)
	if resp.NotionSync != nil {
		if resp.NotionSync.Success {
			fmt.Printf("Mirrored to Notion: %s\n", resp.NotionSync.Ref)
		} else {
			fmt.Printf("Notion mirror failed: %s\n", resp.NotionSync.Error)
		}
	}
	return nil
}
