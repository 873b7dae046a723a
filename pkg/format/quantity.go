// Package format renders yard quantities for display.
package format

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TEU returns a TEU figure with thousands separators (e.g., "1,234 TEU").
func TEU(teu int) string {
	return Count(teu) + " TEU"
}

// Count returns an integer with English thousands separators (e.g., "-12,345").
func Count(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// Percent returns a one-decimal percentage (e.g., "42.5%").
func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// Usage returns "used/capacity TEU (pct)".
func Usage(used, capacity int, pct float64) string {
	return fmt.Sprintf("%s/%s (%s)", Count(used), TEU(capacity), Percent(pct))
}
