// Package utils holds small helpers shared by providers and encoders.
package utils

import (
	"context"
	"strings"
	"time"
)

const ellipsis = "..."

// after is replaced in tests.
var after = time.After

// WaitFor pauses for d unless ctx ends first, in which case ctx.Err() is
// returned.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-after(d):
		return nil
	}
}

// TruncateForLog trims s and keeps at most limit runes of it, marking a cut
// with an ellipsis.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.TrimSpace(s)
	seen := 0
	for i := range s {
		if seen == limit {
			return s[:i] + ellipsis
		}
		seen++
	}
	return s
}
