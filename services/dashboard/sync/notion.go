// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/growthdesk/growthdesk/services/dashboard/datatypes"
	"github.com/growthdesk/growthdesk/services/dashboard/sync/refs"
)

const (
	notionTarget     = "notion"
	notionBaseURL    = "https://api.notion.com/v1"
	notionAPIVersion = "2022-06-28"
)

// NotionMirror maintains one page per experiment in a Notion database.
type NotionMirror struct {
	HTTPClient HTTPClient

	token        string
	databaseID   string
	dashboardURL string
	refs         *refs.Store

	baseURL string
	wait    backoff
}

// NewNotionMirror builds a Notion mirror. An empty token or database id
// leaves the mirror unconfigured; Sync then reports the missing setting
// instead of calling out.
func NewNotionMirror(token, databaseID, dashboardURL string, refStore *refs.Store) *NotionMirror {
	return &NotionMirror{
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		token:        token,
		databaseID:   databaseID,
		dashboardURL: dashboardURL,
		refs:         refStore,
		baseURL:      notionBaseURL,
		wait:         fixedBackoff(retryBaseDelay),
	}
}

func (m *NotionMirror) Name() string { return notionTarget }

func (m *NotionMirror) Configured() bool {
	return m.token != "" && m.databaseID != ""
}

// Sync creates the experiment's page, or updates it when a previous
// sync recorded a page id. Each API call is retried up to three times
// with a fixed delay.
func (m *NotionMirror) Sync(ctx context.Context, exp datatypes.Experiment) Result {
	if m.token == "" {
		return notConfigured(notionTarget, "notion token not configured, set NOTION_API_TOKEN")
	}
	if m.databaseID == "" {
		return notConfigured(notionTarget, "notion database id not configured, set NOTION_DATABASE_ID")
	}

	pageID, known, err := m.refs.Get(notionTarget, exp.ID)
	if err != nil {
		return failure(notionTarget, err)
	}

	if known {
		if err := m.updatePage(ctx, pageID, exp); err != nil {
			return failure(notionTarget, err)
		}
		return Result{Target: notionTarget, Success: true, Ref: pageID}
	}

	pageID, err = m.createPage(ctx, exp)
	if err != nil {
		return failure(notionTarget, err)
	}
	if err := m.refs.Put(notionTarget, exp.ID, pageID); err != nil {
		return failure(notionTarget, err)
	}
	return Result{Target: notionTarget, Success: true, Ref: pageID}
}

func (m *NotionMirror) createPage(ctx context.Context, exp datatypes.Experiment) (string, error) {
	body := map[string]any{
		"parent":     map[string]any{"database_id": m.databaseID},
		"properties": m.pageProperties(exp),
	}
	var created struct {
		ID string `json:"id"`
	}
	err := withRetry(ctx, m.wait, func() error {
		return m.call(ctx, http.MethodPost, m.baseURL+"/pages", body, &created)
	})
	if err != nil {
		return "", fmt.Errorf("create notion page for %s: %w", exp.ExperimentID, err)
	}
	return created.ID, nil
}

func (m *NotionMirror) updatePage(ctx context.Context, pageID string, exp datatypes.Experiment) error {
	body := map[string]any{"properties": m.pageProperties(exp)}
	err := withRetry(ctx, m.wait, func() error {
		return m.call(ctx, http.MethodPatch, m.baseURL+"/pages/"+pageID, body, nil)
	})
	if err != nil {
		return fmt.Errorf("update notion page for %s: %w", exp.ExperimentID, err)
	}
	return nil
}

// pageProperties projects an experiment onto the Notion database
// columns. Enum values are title-cased for the select options; empty
// optionals clear the property rather than writing placeholders.
func (m *NotionMirror) pageProperties(exp datatypes.Experiment) map[string]any {
	props := map[string]any{
		"Experiment Name":  map[string]any{"title": richText(exp.Name)},
		"Category":         selectProp(exp.Category.TitleLabel()),
		"ICE Score":        map[string]any{"number": exp.ICEScore},
		"Status":           selectProp(exp.Status.Label()),
		"Owner":            map[string]any{"rich_text": richText(exp.Owner)},
		"Start Date":       dateProp(exp.StartDate),
		"End Date":         dateProp(exp.EndDate),
		"Hypothesis":       map[string]any{"rich_text": richText(exp.Hypothesis)},
		"Success Criteria": map[string]any{"rich_text": richText(exp.SuccessCriteria)},
		"Learnings":        map[string]any{"rich_text": richTextPtr(exp.Learnings)},
	}

	if exp.Outcome != nil {
		props["Outcome"] = selectProp(exp.Outcome.Label())
	} else {
		props["Outcome"] = map[string]any{"select": nil}
	}

	var link any
	if m.dashboardURL != "" {
		link = m.dashboardURL + "/experiments?exp=" + exp.ID
	}
	props["Dashboard Link"] = map[string]any{"url": link}

	return props
}

func richText(text string) []any {
	if text == "" {
		return []any{}
	}
	return []any{map[string]any{"text": map[string]any{"content": text}}}
}

func richTextPtr(text *string) []any {
	if text == nil {
		return []any{}
	}
	return richText(*text)
}

func selectProp(name string) map[string]any {
	return map[string]any{"select": map[string]any{"name": name}}
}

func dateProp(t *time.Time) map[string]any {
	if t == nil {
		return map[string]any{"date": nil}
	}
	return map[string]any{"date": map[string]any{"start": t.UTC().Format("2006-01-02")}}
}

// call performs one Notion API request, decoding the response into out
// when out is non-nil. Non-2xx responses surface Notion's message.
func (m *NotionMirror) call(ctx context.Context, method, url string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode notion request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build notion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.token)
	req.Header.Set("Notion-Version", notionAPIVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("notion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("notion api %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("notion api %d", resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode notion response: %w", err)
	}
	return nil
}
