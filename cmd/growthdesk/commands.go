// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/growthdesk/growthdesk/pkg/logging"
)

var (
	apiURL   string
	logDir   string
	logLevel string
	logger   *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "growthdesk",
	Short: "Operator CLI for the GrowthDesk experiment dashboard",
	Long: `growthdesk drives the experiment dashboard API from the terminal.

Examples:
  growthdesk experiments list
  growthdesk experiments create --file exp.yaml --sync-notion
  growthdesk experiments complete <id> --outcome success
  growthdesk sync all
  growthdesk health`,
}

func init() {
	defaultURL := os.Getenv("GROWTHDESK_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8085"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL,
		"Base URL of the dashboard API (env: GROWTHDESK_API_URL)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", os.Getenv("GROWTHDESK_LOG_DIR"),
		"Directory for JSON log files (env: GROWTHDESK_LOG_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Minimum log level: debug, info, warn, error")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		var err error
		logger, err = logging.New(logging.Config{
			Level:   logging.ParseLevel(logLevel),
			LogDir:  logDir,
			Service: "cli",
		})
		if err != nil {
			log.Fatalf("Error configuring logging: %v", err)
		}
		logger.SetAsDefault()
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Close()
		}
	}

	rootCmd.AddCommand(experimentsCmd)
	experimentsCmd.AddCommand(listExperimentsCmd)
	experimentsCmd.AddCommand(getExperimentCmd)
	experimentsCmd.AddCommand(createExperimentCmd)
	experimentsCmd.AddCommand(completeExperimentCmd)

	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncAllCmd)
	syncCmd.AddCommand(syncOneCmd)

	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(healthCmd)
}
