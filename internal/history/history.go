// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps the session's research reports, newest first.
// Reports are only ever inserted at the front. Nothing is persisted.
package history

import (
	"sync"

	"github.com/pdiddy/zld-agent/pkg/types"
)

// History is safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	reports []types.Report
	limit   int
	evicted int

	// selected is the pinned report id; empty follows the newest report.
	selected string
}

// New returns an empty History. limit caps the number of retained reports;
// zero or negative keeps every report for the life of the session.
func New(limit int) *History {
	return &History{limit: limit}
}

// Prepend inserts r as the newest report, evicting the oldest when the cap
// is reached. A pinned selection that gets evicted falls back to the newest.
func (h *History) Prepend(r types.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.reports = append([]types.Report{r}, h.reports...)
	if h.limit > 0 && len(h.reports) > h.limit {
		drop := len(h.reports) - h.limit
		for _, old := range h.reports[h.limit:] {
			if old.ID == h.selected {
				h.selected = ""
			}
		}
		h.reports = h.reports[:h.limit]
		h.evicted += drop
	}
}

// Len returns the number of retained reports.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.reports)
}

// Reports returns a copy of the retained reports, newest first.
func (h *History) Reports() []types.Report {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]types.Report, len(h.reports))
	copy(out, h.reports)
	return out
}

// Latest returns the newest report.
func (h *History) Latest() (types.Report, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.reports) == 0 {
		return types.Report{}, false
	}
	return h.reports[0], true
}

// At returns the report at position i (0 is newest).
func (h *History) At(i int) (types.Report, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if i < 0 || i >= len(h.reports) {
		return types.Report{}, false
	}
	return h.reports[i], true
}

// ScanNumber labels position i: the oldest report ever recorded is 1.
// Numbers stay stable when old reports are evicted.
func (h *History) ScanNumber(i int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.reports) - i + h.evicted
}

// Select pins the report with the given id so new reports do not move the
// selection. Selecting the newest report unpins. It reports whether the id
// is in the history.
func (h *History) Select(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, r := range h.reports {
		if r.ID == id {
			if i == 0 {
				h.selected = ""
			} else {
				h.selected = id
			}
			return true
		}
	}
	return false
}

// Unpin makes the selection follow the newest report again.
func (h *History) Unpin() {
	h.mu.Lock()
	h.selected = ""
	h.mu.Unlock()
}

// Selected returns the displayed report: the pinned one, or the newest.
func (h *History) Selected() (types.Report, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.reports) == 0 {
		return types.Report{}, false
	}
	if h.selected != "" {
		for _, r := range h.reports {
			if r.ID == h.selected {
				return r, true
			}
		}
	}
	return h.reports[0], true
}
