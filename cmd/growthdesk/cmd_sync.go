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

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push experiments to the configured mirrors",
}

type syncResult struct {
	Target  string `json:"target"`
	Success bool   `json:"success"`
	Ref     string `json:"ref"`
	URL     string `json:"url"`
	Error   string `json:"error"`
}

var syncOneCmd = &cobra.Command{
	Use:   "one <id>",
	Short: "Sync a single experiment to every configured mirror",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Data []syncResult `json:"data"`
		}
		if err := apiRequest(http.MethodPost, "/v1/experiments/"+args[0]+"/sync", nil, &resp); err != nil {
			return err
		}
		for _, res := range resp.Data {
			printSyncResult(res)
		}
		return nil
	},
}

var syncAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Sync every experiment to every configured mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Data []struct {
				ExperimentID string       `json:"experiment_id"`
				Results      []syncResult `json:"results"`
			} `json:"data"`
			Total       int `json:"total"`
			FullySynced int `json:"fully_synced"`
		}
		if err := apiRequest(http.MethodPost, "/v1/sync", nil, &resp); err != nil {
			return err
		}
		for _, report := range resp.Data {
			fmt.Println(report.ExperimentID)
			for _, res := range report.Results {
				fmt.Print("  ")
				printSyncResult(res)
			}
		}
		fmt.Printf("\n%d/%d experiments fully synced\n", resp.FullySynced, resp.Total)
		return nil
	},
}

func printSyncResult(res syncResult) {
	if res.Success {
		ref := res.Ref
		if res.URL != "" {
			ref = res.URL
		}
		fmt.Printf("%s: ok (%s)\n", res.Target, ref)
		return
	}
	fmt.Printf("%s: FAILED: %s\n", res.Target, res.Error)
}
