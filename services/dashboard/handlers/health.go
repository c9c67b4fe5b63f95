// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/growthdesk/growthdesk/services/dashboard/sync"
)

// Health reports liveness plus which mirrors are configured and whether
// writes are enabled, so operators can see the effective mode at a
// glance.
func Health(writesEnabled bool, mirrors []sync.Mirror) gin.HandlerFunc {
	targets := map[string]bool{}
	for _, mirror := range mirrors {
		targets[mirror.Name()] = mirror.Configured()
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"writes_enabled": writesEnabled,
			"sync_targets":   targets,
		})
	}
}
