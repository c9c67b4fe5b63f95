// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// apiRequest calls the dashboard API and decodes the JSON response into
// out. API-level errors (any non-2xx) surface the server's error
// message when one is present.
func apiRequest(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, apiURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiError turns an error payload into a readable message, including
// validation violations when the server enumerated them.
func apiError(status int, payload []byte) error {
	var body struct {
		Error      string `json:"error"`
		Violations []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"violations"`
	}
	if json.Unmarshal(payload, &body) != nil || body.Error == "" {
		return fmt.Errorf("api returned %d", status)
	}
	msg := body.Error
	for _, v := range body.Violations {
		msg += fmt.Sprintf("\n  - %s: %s", v.Field, v.Message)
	}
	return fmt.Errorf("api returned %d: %s", status, msg)
}

// printJSON pretty-prints a response payload to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
