package cli

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DefaultBarWidth is the width of usage bars in cells.
const DefaultBarWidth = 24

var monthID = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

var (
	barHighStyle = successStyle
	barMidStyle  = warningStyle
	barLowStyle  = errorStyle
)

// FormatBytes renders a byte quota using decimal thresholds and binary units.
func FormatBytes(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.2f GB", float64(n)/(1<<30))
	case n >= 1_000_000:
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	case n >= 1_000:
		return fmt.Sprintf("%.2f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// FormatQuota renders a benefit's total the way the detail view shows it.
func FormatQuota(dataType string, total, remaining int64) string {
	if total > 0 {
		switch dataType {
		case "VOICE":
			return fmt.Sprintf("%.2f menit", float64(total)/60)
		case "TEXT":
			return fmt.Sprintf("%d SMS", total)
		case "DATA":
			return FormatBytes(total)
		}
	}
	return fmt.Sprintf("%d / %d", remaining, total)
}

// UsageBar draws a bar filled in proportion to used/total with a percentage.
// A non-positive total draws an empty bar marked N/A.
func UsageBar(used, total int64, width int) string {
	if width <= 0 {
		width = DefaultBarWidth
	}
	if total <= 0 {
		return subtleStyle.Render(strings.Repeat("░", width)) + " N/A"
	}

	used = max(0, min(used, total))
	frac := float64(used) / float64(total)
	filled := int(math.Round(frac * float64(width)))
	pct := int(math.Round(frac * 100))

	style := barLowStyle
	switch {
	case pct >= 50:
		style = barHighStyle
	case pct >= 20:
		style = barMidStyle
	}

	return style.Render(strings.Repeat("█", filled)) +
		subtleStyle.Render(strings.Repeat("░", width-filled)) +
		fmt.Sprintf(" %d%%", pct)
}

// epoch accepts seconds or milliseconds.
func epoch(ts int64) time.Time {
	if ts > 1_000_000_000_000 {
		ts /= 1000
	}
	return time.Unix(ts, 0)
}

// FormatTimestamp renders ts as "02 Mei 2025 13:04:05" in loc.
func FormatTimestamp(ts int64, loc *time.Location) string {
	t := epoch(ts).In(loc)
	return fmt.Sprintf("%02d %s %d %s", t.Day(), monthID[t.Month()-1], t.Year(), t.Format("15:04:05"))
}

// DaysUntil returns whole days from now until ts, rounding toward the past.
func DaysUntil(ts int64, now time.Time) int {
	return int(math.Floor(epoch(ts).Sub(now).Hours() / 24))
}

// FormatPrice prefixes an amount with its currency label.
func FormatPrice(currency string, amount int64) string {
	return fmt.Sprintf("%s %d", currency, amount)
}
