package library

import "time"

// ApplyProgress applies a page-progress update to a tracked book. total is
// the catalog record's page count, nil when unknown.
//
// Reaching the last known page transitions to READ and stamps the finish
// time once; later updates never overwrite it. Any positive page on an
// unfinished book transitions to READING and stamps the start time once.
// READ is one-way through this path: lowering the page corrects the counter
// but does not revert the status. Page zero with no completion leaves the
// status untouched.
func ApplyProgress(tb *TrackedBook, page int, total *int, now time.Time) {
	tb.CurrentPage = page

	switch {
	case tb.Status == StatusRead:
		// One-way completion; only the counter moves.
	case total != nil && *total > 0 && page >= *total:
		tb.Status = StatusRead
		if tb.FinishedAt == nil {
			tb.FinishedAt = &now
		}
		if tb.StartedAt == nil {
			tb.StartedAt = &now
		}
	case page > 0:
		tb.Status = StatusReading
		if tb.StartedAt == nil {
			tb.StartedAt = &now
		}
	}
}
