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
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/growthdesk/growthdesk/services/dashboard/datatypes"
	"github.com/growthdesk/growthdesk/services/dashboard/sync/refs"
)

const (
	driveTarget     = "drive"
	driveBaseURL    = "https://www.googleapis.com/drive/v3"
	driveUploadURL  = "https://www.googleapis.com/upload/drive/v3"
	driveFolderMIME = "application/vnd.google-apps.folder"
)

// DriveMirror exports experiment scorecards as markdown files in Google
// Drive, one per experiment, grouped into per-category folders under a
// configured root folder.
type DriveMirror struct {
	HTTPClient HTTPClient

	token        string
	rootFolderID string
	refs         *refs.Store

	baseURL   string
	uploadURL string
	wait      backoff
}

// NewDriveMirror builds a Drive mirror. Missing credentials leave it
// unconfigured rather than erroring.
func NewDriveMirror(token, rootFolderID string, refStore *refs.Store) *DriveMirror {
	return &DriveMirror{
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		token:        token,
		rootFolderID: rootFolderID,
		refs:         refStore,
		baseURL:      driveBaseURL,
		uploadURL:    driveUploadURL,
		wait:         linearBackoff(retryBaseDelay),
	}
}

func (m *DriveMirror) Name() string { return driveTarget }

func (m *DriveMirror) Configured() bool {
	return m.token != "" && m.rootFolderID != ""
}

// Sync renders the experiment's scorecard and uploads it, replacing the
// file content when a previous sync recorded a file id. Drive calls
// retry with a linearly growing delay.
func (m *DriveMirror) Sync(ctx context.Context, exp datatypes.Experiment) Result {
	if m.token == "" {
		return notConfigured(driveTarget, "drive access token not configured, set GOOGLE_DRIVE_ACCESS_TOKEN")
	}
	if m.rootFolderID == "" {
		return notConfigured(driveTarget, "drive folder id not configured, set GOOGLE_DRIVE_FOLDER_ID")
	}

	fileID, known, err := m.refs.Get(driveTarget, exp.ID)
	if err != nil {
		return failure(driveTarget, err)
	}

	content := Scorecard(exp)

	if known {
		link, err := m.replaceContent(ctx, fileID, content)
		if err != nil {
			return failure(driveTarget, err)
		}
		return Result{Target: driveTarget, Success: true, Ref: fileID, URL: link}
	}

	folderID, err := m.ensureCategoryFolder(ctx, exp.Category.TitleLabel())
	if err != nil {
		return failure(driveTarget, err)
	}

	name := exp.ExperimentID + " - " + exp.Name + ".md"
	fileID, link, err := m.createFile(ctx, folderID, name, content)
	if err != nil {
		return failure(driveTarget, err)
	}
	if err := m.refs.Put(driveTarget, exp.ID, fileID); err != nil {
		return failure(driveTarget, err)
	}
	return Result{Target: driveTarget, Success: true, Ref: fileID, URL: link}
}

// ensureCategoryFolder finds the category's folder under the root, or
// creates it on first use.
func (m *DriveMirror) ensureCategoryFolder(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("name='%s' and parents in '%s' and mimeType='%s' and trashed=false",
		strings.ReplaceAll(name, "'", `\'`), m.rootFolderID, driveFolderMIME)

	var listing struct {
		Files []struct {
			ID string `json:"id"`
		} `json:"files"`
	}
	listURL := m.baseURL + "/files?q=" + url.QueryEscape(query) + "&fields=" + url.QueryEscape("files(id, name)")
	err := withRetry(ctx, m.wait, func() error {
		return m.call(ctx, http.MethodGet, listURL, nil, &listing)
	})
	if err != nil {
		return "", fmt.Errorf("find drive folder %q: %w", name, err)
	}
	if len(listing.Files) > 0 {
		return listing.Files[0].ID, nil
	}

	var folder struct {
		ID string `json:"id"`
	}
	body := map[string]any{
		"name":     name,
		"mimeType": driveFolderMIME,
		"parents":  []string{m.rootFolderID},
	}
	err = withRetry(ctx, m.wait, func() error {
		return m.call(ctx, http.MethodPost, m.baseURL+"/files?fields=id", body, &folder)
	})
	if err != nil {
		return "", fmt.Errorf("create drive folder %q: %w", name, err)
	}
	return folder.ID, nil
}

// createFile uploads a new markdown file via a multipart/related
// request carrying the metadata and the content in one round trip.
func (m *DriveMirror) createFile(ctx context.Context, folderID, name, content string) (id, link string, err error) {
	meta := map[string]any{
		"name":     name,
		"mimeType": "text/markdown",
		"parents":  []string{folderID},
	}

	var created struct {
		ID          string `json:"id"`
		WebViewLink string `json:"webViewLink"`
	}
	uploadURL := m.uploadURL + "/files?uploadType=multipart&fields=" + url.QueryEscape("id, name, webViewLink")
	err = withRetry(ctx, m.wait, func() error {
		body, contentType, err := multipartUpload(meta, content)
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, body)
		if err != nil {
			return fmt.Errorf("build drive upload: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+m.token)
		req.Header.Set("Content-Type", contentType)
		return m.do(req, &created)
	})
	if err != nil {
		return "", "", fmt.Errorf("upload scorecard %q: %w", name, err)
	}
	return created.ID, created.WebViewLink, nil
}

// replaceContent overwrites an existing file's content, leaving its
// name and parents alone.
func (m *DriveMirror) replaceContent(ctx context.Context, fileID, content string) (string, error) {
	var updated struct {
		WebViewLink string `json:"webViewLink"`
	}
	patchURL := m.uploadURL + "/files/" + fileID + "?uploadType=media&fields=webViewLink"
	err := withRetry(ctx, m.wait, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, patchURL, strings.NewReader(content))
		if err != nil {
			return fmt.Errorf("build drive update: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+m.token)
		req.Header.Set("Content-Type", "text/markdown")
		return m.do(req, &updated)
	})
	if err != nil {
		return "", fmt.Errorf("update scorecard %s: %w", fileID, err)
	}
	return updated.WebViewLink, nil
}

func multipartUpload(meta map[string]any, content string) (io.Reader, string, error) {
	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return nil, "", fmt.Errorf("encode drive metadata: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	metaPart, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"application/json; charset=UTF-8"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("build drive upload: %w", err)
	}
	if _, err := metaPart.Write(rawMeta); err != nil {
		return nil, "", fmt.Errorf("build drive upload: %w", err)
	}

	mediaPart, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/markdown"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("build drive upload: %w", err)
	}
	if _, err := io.WriteString(mediaPart, content); err != nil {
		return nil, "", fmt.Errorf("build drive upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("build drive upload: %w", err)
	}

	return &buf, "multipart/related; boundary=" + w.Boundary(), nil
}

// call issues a JSON request against the metadata API.
func (m *DriveMirror) call(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode drive request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build drive request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return m.do(req, out)
}

func (m *DriveMirror) do(req *http.Request, out any) error {
	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("drive request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("drive api %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("drive api %d", resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode drive response: %w", err)
	}
	return nil
}
