// Package humanize renders byte counts the way the command-line
// wrapper's "-h" flag and log lines expect: unit thresholds pinned to
// docker/go-units' binary constants, one decimal place above 1 KiB and
// none below it.
package humanize

import (
	"fmt"

	units "github.com/docker/go-units"
)

// ToHumanReadableSize renders n bytes as e.g. "1000 B" or "32.0 GiB".
func ToHumanReadableSize(n int64) string {
	switch {
	case n < units.KiB:
		return fmt.Sprintf("%d B", n)
	case n < units.MiB:
		return fmt.Sprintf("%.1f KiB", float64(n)/units.KiB)
	case n < units.GiB:
		return fmt.Sprintf("%.1f MiB", float64(n)/units.MiB)
	case n < units.TiB:
		return fmt.Sprintf("%.1f GiB", float64(n)/units.GiB)
	default:
		return fmt.Sprintf("%.1f TiB", float64(n)/units.TiB)
	}
}
