package uptime

import (
	"fmt"
	"math"
	"strings"
)

func plural(n float64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", int64(n), unit)
	}

	return fmt.Sprintf("%d %ss", int64(n), unit)
}

// Humanize renders seconds as "1 day, 2 hours, 3 minutes, 4.50 seconds",
// leaving out zero components.
func Humanize(up float64) string {
	parts := []string{}

	days := math.Floor(up / 86400)
	up = math.Mod(up, 86400)
	if days != 0 {
		parts = append(parts, plural(days, "day"))
	}

	hours := math.Floor(up / 3600)
	up = math.Mod(up, 3600)
	if hours != 0 {
		parts = append(parts, plural(hours, "hour"))
	}

	minutes := math.Floor(up / 60)
	up = math.Mod(up, 60)
	if minutes != 0 {
		parts = append(parts, plural(minutes, "minute"))
	}

	if up != 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%.2f seconds", up))
	}

	return strings.Join(parts, ", ")
}

// Clock renders seconds as HH:MM:SS. Hours are not wrapped into days.
func Clock(up float64) string {
	s := int64(up)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}
