// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()
	assert.Equal(t, "8085", cfg.Port)
	assert.Equal(t, "growthdesk.db", cfg.DBPath)
	assert.False(t, cfg.EnableWrites)
	assert.False(t, cfg.NotionConfigured())
	assert.False(t, cfg.DriveConfigured())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("GROWTHDESK_PORT", "9000")
	t.Setenv("GROWTHDESK_ENABLE_WRITES", "true")
	t.Setenv("GROWTHDESK_DASHBOARD_URL", "https://growth.internal/")
	t.Setenv("NOTION_API_TOKEN", "secret")
	t.Setenv("NOTION_DATABASE_ID", "db-1")

	cfg := FromEnv()
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.EnableWrites)
	assert.Equal(t, "https://growth.internal", cfg.DashboardURL, "trailing slash trimmed")
	assert.True(t, cfg.NotionConfigured())
	assert.False(t, cfg.DriveConfigured())
}

func TestEnvBool(t *testing.T) {
	for _, truthy := range []string{"true", "TRUE", "1", "yes"} {
		t.Setenv("GROWTHDESK_ENABLE_WRITES", truthy)
		assert.True(t, FromEnv().EnableWrites, truthy)
	}
	for _, falsy := range []string{"", "false", "0", "no", "enabled"} {
		t.Setenv("GROWTHDESK_ENABLE_WRITES", falsy)
		assert.False(t, FromEnv().EnableWrites, falsy)
	}
}
