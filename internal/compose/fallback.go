package compose

import (
	"fmt"

	"github.com/xolan/logpost/internal/entry"
)

// Fallback builds the template post used when generated text is unavailable.
// Descriptions are cut by characters, not bytes.
func Fallback(entries []entry.Entry) string {
	switch len(entries) {
	case 0:
		return NoTasksText
	case 1:
		return fmt.Sprintf("Completed: %s #Productivity #Progress", Truncate(entries[0].Description, 50))
	default:
		return fmt.Sprintf("Made progress on %d tasks today! Including: %s #DailyProgress #Productivity",
			len(entries), Truncate(entries[0].Description, 30))
	}
}

// Truncate keeps the first n characters of s and appends "..." when
// anything was cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
