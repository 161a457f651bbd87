package cache

import "fmt"

// FormatDuration converts a duration in seconds to a formatted string
// (M:SS or H:MM:SS). Zero or negative durations render as "--:--", which is
// what playlist entries without a known length show in the selection list.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "--:--"
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
