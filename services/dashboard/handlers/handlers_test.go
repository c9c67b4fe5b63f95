// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthdesk/growthdesk/services/dashboard/datatypes"
	"github.com/growthdesk/growthdesk/services/dashboard/storage"
	"github.com/growthdesk/growthdesk/services/dashboard/sync"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeMirror records sync calls and answers with a canned result.
type fakeMirror struct {
	name       string
	configured bool
	result     sync.Result
	synced     []datatypes.Experiment
}

func (f *fakeMirror) Name() string     { return f.name }
func (f *fakeMirror) Configured() bool { return f.configured }
func (f *fakeMirror) Sync(_ context.Context, exp datatypes.Experiment) sync.Result {
	f.synced = append(f.synced, exp)
	res := f.result
	res.Target = f.name
	return res
}

func okMirror(name string) *fakeMirror {
	return &fakeMirror{name: name, configured: true, result: sync.Result{Success: true, Ref: name + "-ref"}}
}

func offMirror(name string) *fakeMirror {
	return &fakeMirror{name: name, result: sync.Result{Error: name + " not configured"}}
}

func createBody() map[string]any {
	return map[string]any{
		"experiment_id":    "EXP-001",
		"name":             "Onboarding checklist",
		"category":         "engagement",
		"owner":            "priya",
		"impact_score":     7,
		"confidence_score": 6,
		"ease_score":       5,
		"hypothesis":       "a checklist raises activation",
		"success_criteria": "signup completion over 50%",
		"primary_metric":   "signup_completion",
	}
}

func doJSON(t *testing.T, handler gin.HandlerFunc, method, path string, params gin.Params, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, payload)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	handler(c)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func seed(t *testing.T, store storage.Store, mutate func(*datatypes.Experiment)) datatypes.Experiment {
	t.Helper()
	exp := datatypes.Experiment{
		ExperimentID:     "EXP-010",
		Name:             "Referral nudge",
		Category:         datatypes.CategoryProduct,
		Owner:            "dev",
		Status:           datatypes.StatusLive,
		ICEScore:         120,
		ImpactScore:      5,
		ConfidenceScore:  6,
		EaseScore:        4,
		Hypothesis:       "h",
		SuccessCriteria:  "s",
		PrimaryMetric:    "m",
		SecondaryMetrics: []string{},
	}
	if mutate != nil {
		mutate(&exp)
	}
	created, err := store.Insert(context.Background(), exp)
	require.NoError(t, err)
	return created
}

func TestCreateExperiment(t *testing.T) {
	t.Run("writes disabled", func(t *testing.T) {
		store := storage.NewMemory()
		w := doJSON(t, CreateExperiment(store, okMirror("notion"), false, nil),
			http.MethodPost, "/v1/experiments", nil, createBody())

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "GROWTHDESK_ENABLE_WRITES")
		exps, _ := store.List(context.Background())
		assert.Empty(t, exps)
	})

	t.Run("malformed body", func(t *testing.T) {
		store := storage.NewMemory()
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/v1/experiments", bytes.NewReader([]byte("{not json")))
		CreateExperiment(store, okMirror("notion"), true, nil)(c)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation violations enumerated", func(t *testing.T) {
		store := storage.NewMemory()
		body := createBody()
		body["impact_score"] = 11
		body["category"] = "sales"

		w := doJSON(t, CreateExperiment(store, okMirror("notion"), true, nil),
			http.MethodPost, "/v1/experiments", nil, body)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Error      string                     `json:"error"`
			Violations []datatypes.FieldViolation `json:"violations"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "validation failed", resp.Error)
		fields := map[string]bool{}
		for _, v := range resp.Violations {
			fields[v.Field] = true
		}
		assert.True(t, fields["impact_score"])
		assert.True(t, fields["category"])
	})

	t.Run("created with derived scores", func(t *testing.T) {
		store := storage.NewMemory()
		w := doJSON(t, CreateExperiment(store, okMirror("notion"), true, nil),
			http.MethodPost, "/v1/experiments", nil, createBody())

		require.Equal(t, http.StatusCreated, w.Code)
		var resp struct {
			Data datatypes.Experiment `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Data.ID)
		assert.Equal(t, float64(210), resp.Data.ICEScore)
		assert.Equal(t, datatypes.StatusBacklog, resp.Data.Status)

		// No sync directive, no mirror call.
		_, hasSync := decode(t, w)["notion_sync"]
		assert.False(t, hasSync)
	})

	t.Run("sync_to_notion mirrors the new record", func(t *testing.T) {
		store := storage.NewMemory()
		notion := okMirror("notion")
		body := createBody()
		body["sync_to_notion"] = true

		w := doJSON(t, CreateExperiment(store, notion, true, nil),
			http.MethodPost, "/v1/experiments", nil, body)

		require.Equal(t, http.StatusCreated, w.Code)
		require.Len(t, notion.synced, 1)
		assert.Equal(t, "EXP-001", notion.synced[0].ExperimentID)

		var resp struct {
			NotionSync sync.Result `json:"notion_sync"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.NotionSync.Success)
	})

	t.Run("mirror failure does not fail the write", func(t *testing.T) {
		store := storage.NewMemory()
		notion := &fakeMirror{name: "notion", configured: true, result: sync.Result{Error: "api down"}}
		body := createBody()
		body["sync_to_notion"] = true

		w := doJSON(t, CreateExperiment(store, notion, true, nil),
			http.MethodPost, "/v1/experiments", nil, body)

		require.Equal(t, http.StatusCreated, w.Code)
		exps, _ := store.List(context.Background())
		assert.Len(t, exps, 1)
	})
}

func TestGetExperiment(t *testing.T) {
	store := storage.NewMemory()
	created := seed(t, store, nil)

	w := doJSON(t, GetExperiment(store), http.MethodGet, "/v1/experiments/"+created.ID,
		gin.Params{{Key: "id", Value: created.ID}}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "EXP-010")

	w = doJSON(t, GetExperiment(store), http.MethodGet, "/v1/experiments/missing",
		gin.Params{{Key: "id", Value: "missing"}}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateExperiment(t *testing.T) {
	t.Run("writes disabled", func(t *testing.T) {
		store := storage.NewMemory()
		created := seed(t, store, nil)
		w := doJSON(t, UpdateExperiment(store, okMirror("drive"), false, nil),
			http.MethodPatch, "/v1/experiments/"+created.ID,
			gin.Params{{Key: "id", Value: created.ID}},
			map[string]any{"name": "renamed"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		store := storage.NewMemory()
		w := doJSON(t, UpdateExperiment(store, okMirror("drive"), true, nil),
			http.MethodPatch, "/v1/experiments/missing",
			gin.Params{{Key: "id", Value: "missing"}},
			map[string]any{"name": "renamed"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		store := storage.NewMemory()
		created := seed(t, store, nil)
		w := doJSON(t, UpdateExperiment(store, okMirror("drive"), true, nil),
			http.MethodPatch, "/v1/experiments/"+created.ID,
			gin.Params{{Key: "id", Value: created.ID}},
			map[string]any{"owner": "sam"})

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data datatypes.Experiment `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "sam", resp.Data.Owner)
		assert.Equal(t, "Referral nudge", resp.Data.Name)
		assert.Equal(t, float64(120), resp.Data.ICEScore)
	})

	t.Run("completing exports the scorecard", func(t *testing.T) {
		store := storage.NewMemory()
		created := seed(t, store, nil)
		drive := okMirror("drive")

		w := doJSON(t, UpdateExperiment(store, drive, true, nil),
			http.MethodPatch, "/v1/experiments/"+created.ID,
			gin.Params{{Key: "id", Value: created.ID}},
			map[string]any{"status": "completed", "outcome": "success"})

		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, drive.synced, 1)
		assert.Equal(t, datatypes.StatusCompleted, drive.synced[0].Status)
		_, hasSync := decode(t, w)["drive_sync"]
		assert.True(t, hasSync)
	})

	t.Run("completing without drive configured skips the export", func(t *testing.T) {
		store := storage.NewMemory()
		created := seed(t, store, nil)
		drive := offMirror("drive")

		w := doJSON(t, UpdateExperiment(store, drive, true, nil),
			http.MethodPatch, "/v1/experiments/"+created.ID,
			gin.Params{{Key: "id", Value: created.ID}},
			map[string]any{"status": "completed"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, drive.synced)
	})

	t.Run("non-status update never exports", func(t *testing.T) {
		store := storage.NewMemory()
		created := seed(t, store, func(e *datatypes.Experiment) { e.Status = datatypes.StatusCompleted })
		drive := okMirror("drive")

		w := doJSON(t, UpdateExperiment(store, drive, true, nil),
			http.MethodPatch, "/v1/experiments/"+created.ID,
			gin.Params{{Key: "id", Value: created.ID}},
			map[string]any{"owner": "sam"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, drive.synced)
	})
}

func TestListExperiments(t *testing.T) {
	store := storage.NewMemory()
	seed(t, store, nil)
	seed(t, store, func(e *datatypes.Experiment) {
		e.ExperimentID = "EXP-011"
		e.Status = datatypes.StatusCompleted
		outcome := datatypes.OutcomeSuccess
		e.Outcome = &outcome
	})

	w := doJSON(t, ListExperiments(store), http.MethodGet, "/v1/experiments", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data    []datatypes.Experiment `json:"data"`
		Summary struct {
			Total       int     `json:"total"`
			SuccessRate float64 `json:"success_rate"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Summary.Total)
	assert.InDelta(t, 0.5, resp.Summary.SuccessRate, 1e-9)
}

func TestAnalytics(t *testing.T) {
	store := storage.NewMemory()
	seed(t, store, nil)

	w := doJSON(t, Analytics(store), http.MethodGet, "/v1/analytics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	for _, key := range []string{
		"overview", "status_distribution", "category_distribution",
		"score_distribution", "outcome_distribution", "success_rate_trend",
		"time_to_learning", "roi_by_category", "experiments_over_time",
	} {
		assert.Contains(t, body, key)
	}

	// Empty datasets still come back with their fixed shapes.
	var buckets []struct {
		Range string `json:"range"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body["time_to_learning"], &buckets))
	assert.Len(t, buckets, 5)
}

func TestSyncExperiment(t *testing.T) {
	store := storage.NewMemory()
	created := seed(t, store, nil)
	notion := okMirror("notion")
	drive := offMirror("drive")

	w := doJSON(t, SyncExperiment(store, []sync.Mirror{notion, drive}, nil),
		http.MethodPost, "/v1/experiments/"+created.ID+"/sync",
		gin.Params{{Key: "id", Value: created.ID}}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []sync.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1, "unconfigured mirror skipped")
	assert.Equal(t, "notion", resp.Data[0].Target)
	assert.Empty(t, drive.synced)

	w = doJSON(t, SyncExperiment(store, []sync.Mirror{notion}, nil),
		http.MethodPost, "/v1/experiments/missing/sync",
		gin.Params{{Key: "id", Value: "missing"}}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSyncAll(t *testing.T) {
	t.Run("no targets configured", func(t *testing.T) {
		store := storage.NewMemory()
		w := doJSON(t, SyncAll(store, []sync.Mirror{offMirror("notion"), offMirror("drive")}, nil),
			http.MethodPost, "/v1/sync", nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("per experiment per target results", func(t *testing.T) {
		store := storage.NewMemory()
		seed(t, store, nil)
		seed(t, store, func(e *datatypes.Experiment) { e.ExperimentID = "EXP-011" })

		notion := okMirror("notion")
		failing := &fakeMirror{name: "drive", configured: true, result: sync.Result{Error: "quota"}}

		w := doJSON(t, SyncAll(store, []sync.Mirror{notion, failing}, nil),
			http.MethodPost, "/v1/sync", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data        []ExperimentSyncReport `json:"data"`
			Total       int                    `json:"total"`
			FullySynced int                    `json:"fully_synced"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Total)
		assert.Equal(t, 0, resp.FullySynced, "drive failed for every experiment")
		require.Len(t, resp.Data, 2)
		require.Len(t, resp.Data[0].Results, 2)
		assert.Len(t, notion.synced, 2)
	})

	t.Run("narrowed to one experiment", func(t *testing.T) {
		store := storage.NewMemory()
		first := seed(t, store, nil)
		seed(t, store, func(e *datatypes.Experiment) { e.ExperimentID = "EXP-011" })

		notion := okMirror("notion")
		w := doJSON(t, SyncAll(store, []sync.Mirror{notion}, nil),
			http.MethodPost, "/v1/sync", nil, SyncAllRequest{ExperimentID: first.ID})

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data  []ExperimentSyncReport `json:"data"`
			Total int                    `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, first.ID, resp.Data[0].ID)
		assert.Len(t, notion.synced, 1)
	})

	t.Run("narrowed to unknown experiment", func(t *testing.T) {
		store := storage.NewMemory()
		w := doJSON(t, SyncAll(store, []sync.Mirror{okMirror("notion")}, nil),
			http.MethodPost, "/v1/sync", nil, SyncAllRequest{ExperimentID: "missing"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

type fakeImporter struct {
	configured bool
	drafts     []sync.Draft
	err        error
}

func (f *fakeImporter) Configured() bool { return f.configured }

func (f *fakeImporter) Import(context.Context) ([]sync.Draft, error) {
	return f.drafts, f.err
}

func TestImportFromNotion(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		w := doJSON(t, ImportFromNotion(&fakeImporter{}),
			http.MethodGet, "/v1/notion/import", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "NOTION_API_TOKEN")
	})

	t.Run("returns drafts with count", func(t *testing.T) {
		importer := &fakeImporter{configured: true, drafts: []sync.Draft{
			{NotionPageID: "page-1", Name: "Onboarding checklist"},
			{NotionPageID: "page-2"},
		}}
		w := doJSON(t, ImportFromNotion(importer),
			http.MethodGet, "/v1/notion/import", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data  []sync.Draft `json:"data"`
			Count int          `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Count)
		require.Len(t, resp.Data, 2)
		assert.Equal(t, "Onboarding checklist", resp.Data[0].Name)
	})

	t.Run("upstream failure", func(t *testing.T) {
		importer := &fakeImporter{configured: true, err: errors.New("notion api 503")}
		w := doJSON(t, ImportFromNotion(importer),
			http.MethodGet, "/v1/notion/import", nil, nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestHealth(t *testing.T) {
	w := doJSON(t, Health(true, []sync.Mirror{okMirror("notion"), offMirror("drive")}),
		http.MethodGet, "/health", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"status": "ok",
		"writes_enabled": true,
		"sync_targets": {"notion": true, "drive": false}
	}`, w.Body.String())
}
