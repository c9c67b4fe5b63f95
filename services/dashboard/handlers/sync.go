// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/growthdesk/growthdesk/services/dashboard/datatypes"
	"github.com/growthdesk/growthdesk/services/dashboard/observability"
	"github.com/growthdesk/growthdesk/services/dashboard/storage"
	"github.com/growthdesk/growthdesk/services/dashboard/sync"
)

// SyncExperiment pushes one experiment to every configured mirror and
// reports the per-target results. Unconfigured mirrors are skipped.
// Sync is read-only against the store, so it stays available when
// writes are gated off.
func SyncExperiment(store storage.Store, mirrors []sync.Mirror, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		exp, err := store.Get(c.Request.Context(), id)
		if errors.Is(err, datatypes.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "experiment not found"})
			return
		}
		if err != nil {
			slog.Error("failed to load experiment for sync", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync experiment"})
			return
		}

		results := []sync.Result{}
		for _, mirror := range mirrors {
			if !mirror.Configured() {
				metrics.RecordSyncAttempt(mirror.Name(), "skipped")
				continue
			}
			results = append(results, runMirror(c, mirror, exp, metrics))
		}
		c.JSON(http.StatusOK, gin.H{"data": results})
	}
}

// ExperimentSyncReport is the batch outcome for one experiment.
type ExperimentSyncReport struct {
	ID           string        `json:"id"`
	ExperimentID string        `json:"experiment_id"`
	Results      []sync.Result `json:"results"`
}

// SyncAllRequest narrows a batch sync to a single experiment. An empty
// body or sync_all=true syncs the whole collection.
type SyncAllRequest struct {
	ExperimentID string `json:"experiment_id"`
	SyncAll      bool   `json:"sync_all"`
}

// SyncAll pushes every experiment to every configured mirror. One
// failing experiment never stops the batch; each report carries its own
// per-target outcomes.
func SyncAll(store storage.Store, mirrors []sync.Mirror, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SyncAllRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
		}

		configured := make([]sync.Mirror, 0, len(mirrors))
		for _, mirror := range mirrors {
			if mirror.Configured() {
				configured = append(configured, mirror)
			} else {
				metrics.RecordSyncAttempt(mirror.Name(), "skipped")
			}
		}
		if len(configured) == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no sync targets configured"})
			return
		}

		var exps []datatypes.Experiment
		var err error
		if req.ExperimentID != "" {
			var exp datatypes.Experiment
			exp, err = store.Get(c.Request.Context(), req.ExperimentID)
			if errors.Is(err, datatypes.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "experiment not found"})
				return
			}
			exps = []datatypes.Experiment{exp}
		} else {
			exps, err = store.List(c.Request.Context())
		}
		if err != nil {
			slog.Error("failed to load experiments for batch sync", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sync experiments"})
			return
		}

		reports := make([]ExperimentSyncReport, 0, len(exps))
		synced := 0
		for _, exp := range exps {
			report := ExperimentSyncReport{ID: exp.ID, ExperimentID: exp.ExperimentID}
			allOK := true
			for _, mirror := range configured {
				result := runMirror(c, mirror, exp, metrics)
				report.Results = append(report.Results, result)
				if !result.Success {
					allOK = false
				}
			}
			if allOK {
				synced++
			}
			reports = append(reports, report)
		}

		slog.Info("batch sync finished", "experiments", len(exps), "fully_synced", synced)
		c.JSON(http.StatusOK, gin.H{
			"data":         reports,
			"total":        len(exps),
			"fully_synced": synced,
		})
	}
}
