package engagement

import (
	"fmt"
	"math"
)

// FormatTimestamp renders seconds as MM:SS.
func FormatTimestamp(sec float64) string {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	minutes := int(sec / 60)
	seconds := int(math.Mod(sec, 60))
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
