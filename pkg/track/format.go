package track

import "fmt"

// FormatElapsed renders a number of seconds as HH:MM:SS. Hours are not
// wrapped and negative input is treated as zero.
func FormatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}
