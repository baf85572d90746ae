package common

import (
	"fmt"
	"time"
)

// TruncateAddress shortens an address to 0x1234...abcd. Strings too short to
// shorten are returned as is.
func TruncateAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// FormatRelativeTime renders t relative to now the way the feed shows it.
func FormatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	default:
		return fmt.Sprintf("%dw ago", int(diff/(7*24*time.Hour)))
	}
}
