// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Dump the analytics datasets as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]json.RawMessage
		if err := apiRequest(http.MethodGet, "/v1/analytics", nil, &resp); err != nil {
			return err
		}
		return printJSON(resp)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the dashboard service",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Status        string          `json:"status"`
			WritesEnabled bool            `json:"writes_enabled"`
			SyncTargets   map[string]bool `json:"sync_targets"`
		}
		if err := apiRequest(http.MethodGet, "/health", nil, &resp); err != nil {
			return err
		}
		fmt.Printf("status: %s\n", resp.Status)
		fmt.Printf("writes enabled: %v\n", resp.WritesEnabled)
		for target, configured := range resp.SyncTargets {
			fmt.Printf("sync target %s configured: %v\n", target, configured)
		}
		return nil
	},
}
