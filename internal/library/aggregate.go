package library

import "time"

// Recompute derives a user's summary from the full tracked set. Pages read
// sums current-page over READ books only; an in-progress book contributes
// nothing until finished. Empty input yields a zero-valued summary.
// ComputeTrends derives reading activity for the trailing window ending at
// now. Pages per day counts only books finished inside the window, attributed
// to their finish date; a book with no finish timestamp contributes to the
// all-time total only.
func ComputeTrends(books []TrackedBook, days int, now time.Time) Trends {
	t := Trends{WindowDays: days}
	cutoff := now.AddDate(0, 0, -days)
	var pages int
	for _, tb := range books {
		if tb.Status != StatusRead {
			continue
		}
		t.TotalBooksRead++
		if tb.FinishedAt != nil && tb.FinishedAt.After(cutoff) {
			t.BooksFinished++
			pages += tb.CurrentPage
		}
	}
	if days > 0 {
		t.AvgPagesPerDay = float64(pages) / float64(days)
	}
	return t
}

func Recompute(userID string, books []TrackedBook, now time.Time) Summary {
	s := Summary{UserID: userID, UpdatedAt: now}
	for _, tb := range books {
		s.TotalBooks++
		switch tb.Status {
		case StatusRead:
			s.BooksRead++
			s.TotalPagesRead += tb.CurrentPage
		case StatusReading:
			s.BooksReading++
		case StatusWantToRead:
			s.BooksToRead++
		}
	}
	return s
}
