// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the dashboard HTTP API.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/growthdesk/growthdesk/services/dashboard/analytics"
	"github.com/growthdesk/growthdesk/services/dashboard/datatypes"
	"github.com/growthdesk/growthdesk/services/dashboard/observability"
	"github.com/growthdesk/growthdesk/services/dashboard/storage"
	"github.com/growthdesk/growthdesk/services/dashboard/sync"
)

// ListExperiments returns the full collection, newest update first,
// together with the headline summary so the landing page needs one
// round trip.
func ListExperiments(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		exps, err := store.List(c.Request.Context())
		if err != nil {
			slog.Error("failed to list experiments", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list experiments"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"data":    exps,
			"summary": analytics.Overview(exps, time.Now().UTC()),
		})
	}
}

// GetExperiment returns one experiment by surrogate id.
func GetExperiment(store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		exp, err := store.Get(c.Request.Context(), id)
		if errors.Is(err, datatypes.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "experiment not found"})
			return
		}
		if err != nil {
			slog.Error("failed to load experiment", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load experiment"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": exp})
	}
}

// CreateExperiment validates, normalizes, and stores a new experiment.
// When the payload asks for it and the Notion mirror is configured, the
// new record is mirrored before responding; the mirror outcome rides
// along in the response and never fails the write.
func CreateExperiment(store storage.Store, notion sync.Mirror, writesEnabled bool, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !writesEnabled {
			metrics.RecordRejectedWrite("create", "writes_disabled")
			c.JSON(http.StatusForbidden, gin.H{"error": datatypes.ErrWritesDisabled.Error()})
			return
		}

		var req datatypes.CreateExperimentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			metrics.RecordRejectedWrite("create", "malformed")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		exp, err := req.Normalize()
		if err != nil {
			var verr *datatypes.ValidationError
			if errors.As(err, &verr) {
				metrics.RecordRejectedWrite("create", "validation")
				c.JSON(http.StatusBadRequest, gin.H{
					"error":      "validation failed",
					"violations": verr.Violations,
				})
				return
			}
			slog.Error("failed to normalize experiment", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create experiment"})
			return
		}

		created, err := store.Insert(c.Request.Context(), *exp)
		if err != nil {
			slog.Error("failed to insert experiment", "experiment_id", exp.ExperimentID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create experiment"})
			return
		}
		metrics.RecordWrite("create")
		slog.Info("experiment created", "id", created.ID, "experiment_id", created.ExperimentID)

		response := gin.H{"data": created}
		if req.SyncToNotion {
			result := runMirror(c, notion, created, metrics)
			response["notion_sync"] = result
		}
		c.JSON(http.StatusCreated, response)
	}
}

// UpdateExperiment applies a partial update. Completing an experiment
// additionally exports its scorecard to Drive, best effort, with the
// outcome reported in the response.
func UpdateExperiment(store storage.Store, drive sync.Mirror, writesEnabled bool, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !writesEnabled {
			metrics.RecordRejectedWrite("update", "writes_disabled")
			c.JSON(http.StatusForbidden, gin.H{"error": datatypes.ErrWritesDisabled.Error()})
			return
		}

		id := c.Param("id")
		var req datatypes.UpdateExperimentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			metrics.RecordRejectedWrite("update", "malformed")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		current, err := store.Get(c.Request.Context(), id)
		if errors.Is(err, datatypes.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "experiment not found"})
			return
		}
		if err != nil {
			slog.Error("failed to load experiment", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update experiment"})
			return
		}

		next, err := req.Apply(current)
		if err != nil {
			var verr *datatypes.ValidationError
			if errors.As(err, &verr) {
				metrics.RecordRejectedWrite("update", "validation")
				c.JSON(http.StatusBadRequest, gin.H{
					"error":      "validation failed",
					"violations": verr.Violations,
				})
				return
			}
			slog.Error("failed to apply update", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update experiment"})
			return
		}

		updated, err := store.Update(c.Request.Context(), next)
		if err != nil {
			slog.Error("failed to persist update", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update experiment"})
			return
		}
		metrics.RecordWrite("update")
		slog.Info("experiment updated", "id", updated.ID, "status", updated.Status)

		response := gin.H{"data": updated}
		if req.SetsStatus(datatypes.StatusCompleted) && drive.Configured() {
			result := runMirror(c, drive, updated, metrics)
			response["drive_sync"] = result
		}
		c.JSON(http.StatusOK, response)
	}
}

// runMirror pushes one experiment to one mirror, recording the outcome
// in metrics and logs. Unconfigured mirrors report skipped.
func runMirror(c *gin.Context, mirror sync.Mirror, exp datatypes.Experiment, metrics *observability.Metrics) sync.Result {
	if !mirror.Configured() {
		metrics.RecordSyncAttempt(mirror.Name(), "skipped")
		return mirror.Sync(c.Request.Context(), exp)
	}
	result := mirror.Sync(c.Request.Context(), exp)
	if result.Success {
		metrics.RecordSyncAttempt(mirror.Name(), "success")
		slog.Info("experiment mirrored", "target", mirror.Name(), "id", exp.ID, "ref", result.Ref)
	} else {
		metrics.RecordSyncAttempt(mirror.Name(), "failure")
		slog.Warn("mirror sync failed", "target", mirror.Name(), "id", exp.ID, "error", result.Error)
	}
	return result
}
