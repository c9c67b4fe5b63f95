// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/growthdesk/growthdesk/services/dashboard/handlers"
	"github.com/growthdesk/growthdesk/services/dashboard/observability"
	"github.com/growthdesk/growthdesk/services/dashboard/storage"
	"github.com/growthdesk/growthdesk/services/dashboard/sync"
)

// Deps carries everything the routes need wired in.
type Deps struct {
	Store         storage.Store
	Notion        sync.Mirror
	Drive         sync.Mirror
	Importer      handlers.NotionImporter
	Metrics       *observability.Metrics
	WritesEnabled bool
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	mirrors := []sync.Mirror{deps.Notion, deps.Drive}

	router.GET("/health", handlers.Health(deps.WritesEnabled, mirrors))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.GET("/analytics", handlers.Analytics(deps.Store))
		v1.POST("/sync", handlers.SyncAll(deps.Store, mirrors, deps.Metrics))
		v1.GET("/notion/import", handlers.ImportFromNotion(deps.Importer))

		experiments := v1.Group("/experiments")
		{
			experiments.GET("", handlers.ListExperiments(deps.Store))
			experiments.POST("", handlers.CreateExperiment(deps.Store, deps.Notion, deps.WritesEnabled, deps.Metrics))
			experiments.GET("/:id", handlers.GetExperiment(deps.Store))
			experiments.PATCH("/:id", handlers.UpdateExperiment(deps.Store, deps.Drive, deps.WritesEnabled, deps.Metrics))
			experiments.POST("/:id/sync", handlers.SyncExperiment(deps.Store, mirrors, deps.Metrics))
		}
	}
}
