package entry

import (
	"errors"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar-date format stored in the date field
	DateLayout = "2006-01-02"
	// TimeLayout is the wall-clock format stored in the time field
	TimeLayout = "15:04"
	// TimestampLayout is the ISO-8601 local-time format stored in the timestamp field
	TimestampLayout = "2006-01-02T15:04:05.000000"
)

// ErrEmptyDescription is returned when a description is empty after trimming
var ErrEmptyDescription = errors.New("task description cannot be empty")

// Entry represents a single logged unit of work.
// Every field is kept as text so hand-edited store files always load.
type Entry struct {
	Description string `json:"description"`
	Notes       string `json:"notes,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// New builds an Entry stamped with now.
// The description and notes are trimmed; an empty description is rejected.
func New(description, notes string, now time.Time) (Entry, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Entry{}, ErrEmptyDescription
	}

	return Entry{
		Description: description,
		Notes:       strings.TrimSpace(notes),
		Date:        now.Format(DateLayout),
		Time:        now.Format(TimeLayout),
		Timestamp:   now.Format(TimestampLayout),
	}, nil
}

// CreatedAt parses the timestamp field in loc.
// Returns false when the field is missing or malformed.
func (e Entry) CreatedAt(loc *time.Location) (time.Time, bool) {
	if e.Timestamp == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{TimestampLayout, "2006-01-02T15:04:05", time.RFC3339Nano} {
		if t, err := time.ParseInLocation(layout, e.Timestamp, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ClockTime returns the HH:MM the entry was logged at, falling back to the
// timestamp for entries written without a time field.
func (e Entry) ClockTime() string {
	if e.Time != "" {
		return e.Time
	}
	if t, ok := e.CreatedAt(time.Local); ok {
		return t.Format(TimeLayout)
	}
	return "--:--"
}
