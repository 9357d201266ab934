package model

import "time"

// Sheet groups the rows of one billing session. A chat has at most one
// active sheet; clearing moves it to the archive.
type Sheet struct {
	ID         string
	ChatID     int64
	CreatedAt  time.Time
	ArchivedAt *time.Time
}

func (s Sheet) Archived() bool { return s.ArchivedAt != nil }

// SheetSummary is an archived sheet with its row count and total.
type SheetSummary struct {
	Sheet
	Rows  int
	Total float64
}
