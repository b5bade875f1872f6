package domain

import (
	"fmt"
	"time"
)

// FormatLastSeen renders a presence record the way the chat header shows it.
func FormatLastSeen(record PresenceRecord, now time.Time) string {
	if record.Online {
		return "online"
	}
	seen, ok := record.LastSeenTime()
	if !ok {
		return "Never"
	}
	diff := now.Sub(seen)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(diff/time.Hour))
	default:
		return seen.Local().Format(time.DateTime)
	}
}
