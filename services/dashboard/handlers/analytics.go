// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/growthdesk/growthdesk/services/dashboard/analytics"
	"github.com/growthdesk/growthdesk/services/dashboard/storage"
)

// Analytics computes every chart dataset in one pass over the
// collection. The page renders from a single response, so partial
// recomputation is not worth the cache complexity at this volume.
func Analytics(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		exps, err := store.List(c.Request.Context())
		if err != nil {
			slog.Error("failed to load experiments for analytics", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute analytics"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"overview":              analytics.Overview(exps, time.Now().UTC()),
			"status_distribution":   analytics.StatusDistribution(exps),
			"category_distribution": analytics.CategoryDistribution(exps),
			"score_distribution":    analytics.ScoreDistribution(exps),
			"outcome_distribution":  analytics.OutcomeDistribution(exps),
			"success_rate_trend":    analytics.SuccessRateTrend(exps, analytics.DefaultTargetThreshold),
			"time_to_learning":      analytics.TimeToLearning(exps),
			"roi_by_category":       analytics.ROIByCategory(exps),
			"experiments_over_time": analytics.ExperimentsOverTime(exps),
		})
	}
}
