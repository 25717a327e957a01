package models

import "time"

// GameResult is one finished play-through: whether the final total was right
// and how long the deck took. Appended to the owning user's history exactly
// once per session.
type GameResult struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Date           time.Time `json:"date"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	Correct        bool      `json:"correct"`
	CreatedAt      time.Time `json:"created_at"`
}

// HistoryFilter narrows a user's result history. Correct is a tri-state:
// nil means both outcomes.
type HistoryFilter struct {
	UserID  int64
	Correct *bool
	Limit   int
	Offset  int
}

// HistorySummary aggregates a user's history for display.
type HistorySummary struct {
	Total       int      `json:"total"`
	Correct     int      `json:"correct"`
	BestSeconds *int     `json:"best_seconds"` // fastest correct run, nil when none
	AvgSeconds  *float64 `json:"avg_seconds"`
}
