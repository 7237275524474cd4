package models

import "time"

const (
	MinLevel = 1
	MaxLevel = 7

	// DayLayout is the calendar-day format entries are stored with.
	DayLayout = "2006-01-02"
)

// MoodEntry is one self-reported mood. Several entries per day are allowed.
type MoodEntry struct {
	ID     int64  `db:"id"      json:"id"`
	UserID int64  `db:"user_id" json:"user_id"`
	Level  int    `db:"level"   json:"level"`
	Date   string `db:"date"    json:"date"` // YYYY-MM-DD
}

// ValidLevel reports whether l is on the 1..7 scale.
func ValidLevel(l int) bool {
	return l >= MinLevel && l <= MaxLevel
}

// Session is the in-memory check-in state of one user.
type Session struct {
	UserID     int64
	State      State
	OpenedAt   time.Time
	Generation uint64 // bumped on every open
}

// Awaiting reports whether a mood answer is outstanding.
func (s *Session) Awaiting() bool {
	return s.State == StateAwaiting
}

// SeriesPoint is the mean level of a single day.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Summary is the aggregated view of a window.
type Summary struct {
	Window  Window        `json:"window"`
	Series  []SeriesPoint `json:"series"`
	Average float64       `json:"average"` // over raw entries, not over Series
	Count   int           `json:"count"`
}
