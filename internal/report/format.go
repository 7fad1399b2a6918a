// Package report renders ledger contents for humans and for export: JSON
// dumps, CSV sheets and standalone HTML pages.
package report

import "fmt"

// FormatDuration renders seconds the short way durations appear in listings:
// "12.3s", "2m 5.1s", "1h 4m".
func FormatDuration(secs float64) string {
	if secs < 0 {
		secs = 0
	}
	switch {
	case secs < 60:
		return fmt.Sprintf("%.1fs", secs)
	case secs < 3600:
		m := int(secs) / 60
		return fmt.Sprintf("%dm %.1fs", m, secs-float64(m*60))
	default:
		h := int(secs) / 3600
		m := (int(secs) % 3600) / 60
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// FormatSize renders byte counts with one decimal: "512 B", "1.5 MB".
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	val := float64(bytes)
	for _, suffix := range []string{"KB", "MB", "GB", "TB"} {
		val /= unit
		if val < unit {
			return fmt.Sprintf("%.1f %s", val, suffix)
		}
	}
	return fmt.Sprintf("%.1f PB", val/unit)
}
