// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/growthdesk/growthdesk/services/dashboard/sync"
)

// NotionImporter reads the configured Notion database back as
// experiment drafts.
type NotionImporter interface {
	Configured() bool
	Import(ctx context.Context) ([]sync.Draft, error)
}

// ImportFromNotion returns every page of the Notion database mapped to
// an experiment draft, for import preview. Read-only: nothing is
// persisted and no Notion page is touched.
func ImportFromNotion(importer NotionImporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !importer.Configured() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "notion integration not configured, set NOTION_API_TOKEN and NOTION_DATABASE_ID",
			})
			return
		}

		drafts, err := importer.Import(c.Request.Context())
		if err != nil {
			slog.Error("notion import failed", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to import from notion"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": drafts, "count": len(drafts)})
	}
}
