package models

import "strings"

type Window string

const (
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

// ParseWindow maps a user-facing name onto a Window.
func ParseWindow(s string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case WindowWeek, WindowMonth, WindowAll:
		return w, nil
	default:
		return "", &ValidationError{Field: "window", Value: s}
	}
}
