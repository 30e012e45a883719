// Package humanize formats byte counts and entry counts for CLI output.
// Adapted from internal/util.go's FormatFileSize/FormatNumber helpers;
// the BD-specific FormatTime and big-endian Read* cursor helpers had no
// PAK analog and were dropped rather than carried along unused.
package humanize

import (
	"fmt"
	"math"
)

// FileSize renders size as a human-readable byte count ("12.34 MB") when
// human is true, or the byte count with two decimals and a "B" suffix
// ("1234.00 B") otherwise.
func FileSize(size int64, human bool) string {
	f := float64(size)
	if f <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}
	group := 0
	if human {
		group = int(math.Log10(f) / math.Log10(1024))
		if group < 0 {
			group = 0
		}
		if group >= len(units) {
			group = len(units) - 1
		}
	}
	return fmt.Sprintf("%.2f %s", f/math.Pow(1024, float64(group)), units[group])
}

// Count formats n with thousands separators ("1,234,567").
func Count(n int64) string {
	if n == 0 {
		return "0"
	}
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return sign + s
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, byte(c))
	}
	return sign + string(out)
}
