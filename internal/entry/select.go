package entry

import "time"

// Today returns the entries whose date equals now's calendar date.
// Matching is exact string equality; store order is preserved.
func Today(entries []Entry, now time.Time) []Entry {
	return OnDate(entries, now.Format(DateLayout))
}

// OnDate returns the entries whose date field equals day exactly.
// The input slice is never modified.
func OnDate(entries []Entry, day string) []Entry {
	selected := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Date == day {
			selected = append(selected, e)
		}
	}
	return selected
}

// Malformed returns the entries whose date field is not a valid YYYY-MM-DD
// date. Such entries never match a day and are reported instead of guessed at.
func Malformed(entries []Entry) []Entry {
	var bad []Entry
	for _, e := range entries {
		if !ValidDate(e.Date) {
			bad = append(bad, e)
		}
	}
	return bad
}

// ValidDate reports whether s is a canonical YYYY-MM-DD date
func ValidDate(s string) bool {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return false
	}
	return t.Format(DateLayout) == s
}
