package domain

import (
	"fmt"
	"time"
)

// HistoryItem es una descarga registrada durante la sesión actual
type HistoryItem struct {
	ID        string
	Title     string
	URL       string
	Platform  string
	Quality   string
	Thumbnail string
	Timestamp time.Time
}

// FormatAge formatea la antigüedad del item relativa a now
func FormatAge(ts, now time.Time) string {
	diff := now.Sub(ts)
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	default:
		return ts.Format("2006-01-02")
	}
}
