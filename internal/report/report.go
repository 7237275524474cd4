// Package report turns a raw mood log into per-day series and averages.
package report

import (
	"fmt"
	"math"
	"sort"
	"time"

	"telegram-mood-diary/internal/models"
)

// ErrNoData means the window holds no entries. It is not a failure.
var ErrNoData = fmt.Errorf("no mood entries in window: %w", models.ErrNotFound)

// Windows holds the look-back length of each bounded window in days.
type Windows struct {
	WeekDays  int
	MonthDays int
}

func DefaultWindows() Windows {
	return Windows{WeekDays: 7, MonthDays: 30}
}

// Since returns the first day (inclusive) covered by w relative to today,
// or "" for the unbounded window.
func (ws Windows) Since(w models.Window, today time.Time) (string, error) {
	var days int
	switch w {
	case models.WindowAll:
		return "", nil
	case models.WindowWeek:
		days = ws.WeekDays
	case models.WindowMonth:
		days = ws.MonthDays
	default:
		return "", &models.ValidationError{Field: "window", Value: w}
	}
	return today.AddDate(0, 0, -days).Format(models.DayLayout), nil
}

// Summarize filters entries to the window and aggregates them. Same-day
// entries collapse to their mean in the series, while the average is taken
// over every raw entry.
func (ws Windows) Summarize(entries []models.MoodEntry, w models.Window, today time.Time) (models.Summary, error) {
	since, err := ws.Since(w, today)
	if err != nil {
		return models.Summary{}, err
	}

	type bucket struct {
		sum, n int
	}
	days := make(map[string]*bucket)
	total, count := 0, 0

	for _, e := range entries {
		if since != "" && e.Date < since {
			continue
		}
		b, ok := days[e.Date]
		if !ok {
			b = &bucket{}
			days[e.Date] = b
		}
		b.sum += e.Level
		b.n++
		total += e.Level
		count++
	}

	if count == 0 {
		return models.Summary{Window: w}, ErrNoData
	}

	series := make([]models.SeriesPoint, 0, len(days))
	for d, b := range days {
		series = append(series, models.SeriesPoint{Date: d, Value: float64(b.sum) / float64(b.n)})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })

	return models.Summary{
		Window:  w,
		Series:  series,
		Average: float64(total) / float64(count),
		Count:   count,
	}, nil
}

// Round2 rounds for display only.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var labels = map[int]string{
	1: "💀", 2: "🌧️", 3: "😕",
	4: "😐", 5: "🌿", 6: "🌞", 7: "🚀",
}

// Label is the emoji for the nearest whole level.
func Label(v float64) string {
	if l, ok := labels[int(math.Round(v))]; ok {
		return l
	}
	return "❓"
}
