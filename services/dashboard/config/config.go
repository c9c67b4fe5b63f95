// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config reads the dashboard's runtime settings from the
// environment. All settings have working local defaults except the
// mirror credentials, which simply leave their mirror unconfigured.
package config

import (
	"os"
	"strings"
)

// Config is the dashboard service configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// DBPath is the SQLite database file.
	DBPath string

	// RefsPath is the BadgerDB directory for sync refs.
	RefsPath string

	// EnableWrites gates all mutating endpoints. Off by default so a
	// dashboard pointed at shared data starts read-only.
	EnableWrites bool

	// DashboardURL is the externally reachable base URL, used for
	// backlinks in mirrored documents. Optional.
	DashboardURL string

	NotionToken      string
	NotionDatabaseID string

	DriveAccessToken string
	DriveFolderID    string

	// OTLPEndpoint enables trace export when set.
	OTLPEndpoint string
}

// FromEnv builds a Config from the process environment.
func FromEnv() Config {
	return Config{
		Port:             envOr("GROWTHDESK_PORT", "8085"),
		DBPath:           envOr("GROWTHDESK_DB_PATH", "growthdesk.db"),
		RefsPath:         envOr("GROWTHDESK_REFS_PATH", "growthdesk-refs"),
		EnableWrites:     envBool("GROWTHDESK_ENABLE_WRITES"),
		DashboardURL:     strings.TrimRight(os.Getenv("GROWTHDESK_DASHBOARD_URL"), "/"),
		NotionToken:      os.Getenv("NOTION_API_TOKEN"),
		NotionDatabaseID: os.Getenv("NOTION_DATABASE_ID"),
		DriveAccessToken: os.Getenv("GOOGLE_DRIVE_ACCESS_TOKEN"),
		DriveFolderID:    os.Getenv("GOOGLE_DRIVE_FOLDER_ID"),
		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

// NotionConfigured reports whether both Notion settings are present.
func (c Config) NotionConfigured() bool {
	return c.NotionToken != "" && c.NotionDatabaseID != ""
}

// DriveConfigured reports whether both Drive settings are present.
func (c Config) DriveConfigured() bool {
	return c.DriveAccessToken != "" && c.DriveFolderID != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
