// Copyright (C) 2026 GrowthDesk (eng@growthdesk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sync

import (
	"context"
	"time"
)

const (
	maxAttempts    = 3
	retryBaseDelay = time.Second
)

// backoff computes the wait before retrying after the given 1-based
// attempt. Fixed-delay targets ignore the attempt number; linear ones
// scale with it.
type backoff func(attempt int) time.Duration

func fixedBackoff(base time.Duration) backoff {
	return func(int) time.Duration { return base }
}

func linearBackoff(base time.Duration) backoff {
	return func(attempt int) time.Duration { return base * time.Duration(attempt) }
}

// withRetry runs op up to maxAttempts times, sleeping per the backoff
// between attempts. The last error wins. Context cancellation cuts the
// wait short and is returned as-is.
func withRetry(ctx context.Context, wait backoff, op func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		timer := time.NewTimer(wait(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
