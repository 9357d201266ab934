package model

import (
	"strings"
	"time"
)

// Row is one committed calculator line on a sheet.
type Row struct {
	ID         int64
	SheetID    string
	ChatID     int64
	Expression string
	Result     float64
	Note       string
	CreatedAt  time.Time
	CreatedBy  int64
}

func NewRow(chatID int64, expression string, result float64, note string, userID int64) *Row {
	return &Row{
		ChatID:     chatID,
		Expression: strings.TrimSpace(expression),
		Result:     result,
		Note:       strings.TrimSpace(note),
		CreatedAt:  time.Now().UTC(),
		CreatedBy:  userID,
	}
}
