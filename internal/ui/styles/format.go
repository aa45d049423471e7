package styles

import (
	"fmt"
	"time"
)

// FormatTimeout renders an activity timeout, e.g. "10s".
func FormatTimeout(seconds int) string {
	return fmt.Sprintf("%ds", seconds)
}

// FormatActivityCount returns "1 activity" / "3 activities".
func FormatActivityCount(n int) string {
	if n == 1 {
		return "1 activity"
	}
	return fmt.Sprintf("%d activities", n)
}

// FormatClock renders a message timestamp as HH:MM.
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("15:04")
}
