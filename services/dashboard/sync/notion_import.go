// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sync

import (
	"context"
	"fmt"
	"net/http"

	"github.com/growthdesk/growthdesk/services/dashboard/datatypes"
)

// Draft is a Notion page read back as an experiment candidate. Values
// come through as Notion stores them (title-cased select labels, ISO
// date strings); the caller normalizes before persisting anything.
type Draft struct {
	NotionPageID    string  `json:"notion_page_id"`
	NotionURL       string  `json:"notion_url"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	ICEScore        float64 `json:"ice_score"`
	Status          string  `json:"status"`
	Owner           string  `json:"owner"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"`
	Hypothesis      string  `json:"hypothesis"`
	SuccessCriteria string  `json:"success_criteria"`
	Outcome         *string `json:"outcome"`
	Learnings       *string `json:"learnings"`
	LastEdited      string  `json:"last_edited"`
}

type notionTextItem struct {
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
}

type notionProperty struct {
	Title    []notionTextItem `json:"title"`
	RichText []notionTextItem `json:"rich_text"`
	Number   *float64         `json:"number"`
	Select   *struct {
		Name string `json:"name"`
	} `json:"select"`
	Date *struct {
		Start string `json:"start"`
	} `json:"date"`
}

type notionPage struct {
	ID             string                    `json:"id"`
	URL            string                    `json:"url"`
	LastEditedTime string                    `json:"last_edited_time"`
	Properties     map[string]notionProperty `json:"properties"`
}

// Import queries the configured Notion database and maps every page
// back to a draft for import preview. It never writes to the store or
// to Notion.
func (m *NotionMirror) Import(ctx context.Context) ([]Draft, error) {
	if !m.Configured() {
		return nil, fmt.Errorf("%w: notion", datatypes.ErrMirrorNotConfigured)
	}

	var queried struct {
		Results []notionPage `json:"results"`
	}
	err := withRetry(ctx, m.wait, func() error {
		return m.call(ctx, http.MethodPost, m.baseURL+"/databases/"+m.databaseID+"/query", map[string]any{}, &queried)
	})
	if err != nil {
		return nil, fmt.Errorf("query notion database: %w", err)
	}

	drafts := make([]Draft, 0, len(queried.Results))
	for _, page := range queried.Results {
		drafts = append(drafts, draftFromPage(page))
	}
	return drafts, nil
}

func draftFromPage(page notionPage) Draft {
	props := page.Properties
	return Draft{
		NotionPageID:    page.ID,
		NotionURL:       page.URL,
		Name:            firstText(props["Experiment Name"].Title),
		Category:        selectName(props["Category"]),
		ICEScore:        numberValue(props["ICE Score"]),
		Status:          selectName(props["Status"]),
		Owner:           firstText(props["Owner"].RichText),
		StartDate:       dateStart(props["Start Date"]),
		EndDate:         dateStart(props["End Date"]),
		Hypothesis:      firstText(props["Hypothesis"].RichText),
		SuccessCriteria: firstText(props["Success Criteria"].RichText),
		Outcome:         selectNamePtr(props["Outcome"]),
		Learnings:       textPtr(props["Learnings"].RichText),
		LastEdited:      page.LastEditedTime,
	}
}

func firstText(items []notionTextItem) string {
	if len(items) == 0 {
		return ""
	}
	return items[0].Text.Content
}

func textPtr(items []notionTextItem) *string {
	text := firstText(items)
	if text == "" {
		return nil
	}
	return &text
}

func selectName(prop notionProperty) string {
	if prop.Select == nil {
		return ""
	}
	return prop.Select.Name
}

func selectNamePtr(prop notionProperty) *string {
	if prop.Select == nil {
		return nil
	}
	return &prop.Select.Name
}

func numberValue(prop notionProperty) float64 {
	if prop.Number == nil {
		return 0
	}
	return *prop.Number
}

func dateStart(prop notionProperty) *string {
	if prop.Date == nil {
		return nil
	}
	return &prop.Date.Start
}
