package entry

import (
	"reflect"
	"testing"
	"time"
)

func sampleEntries() []Entry {
	return []Entry{
		{Description: "old task", Date: "2024-01-14"},
		{Description: "first", Date: "2024-01-15"},
		{Description: "malformed", Date: "15/01/2024"},
		{Description: "second", Date: "2024-01-15"},
		{Description: "near miss", Date: "2024-1-15"},
		{Description: "no date"},
		{Description: "third", Date: "2024-01-15"},
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2024, time.January, 15, 23, 50, 0, 0, time.Local)

	got := Today(sampleEntries(), now)

	var descs []string
	for _, e := range got {
		descs = append(descs, e.Description)
	}
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(descs, want) {
		t.Errorf("Today() = %v, want %v", descs, want)
	}
}

func TestToday_Idempotent(t *testing.T) {
	now := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.Local)
	entries := sampleEntries()

	first := Today(entries, now)
	second := Today(entries, now)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Today() not idempotent: %v vs %v", first, second)
	}

	again := Today(first, now)
	if !reflect.DeepEqual(first, again) {
		t.Errorf("Today() of its own output changed: %v vs %v", first, again)
	}
}

func TestToday_DoesNotModifyInput(t *testing.T) {
	entries := sampleEntries()
	before := append([]Entry(nil), entries...)

	_ = Today(entries, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.Local))

	if !reflect.DeepEqual(entries, before) {
		t.Error("Today() modified its input")
	}
}

func TestOnDate_NoMatches(t *testing.T) {
	got := OnDate(sampleEntries(), "2030-01-01")
	if got == nil || len(got) != 0 {
		t.Errorf("OnDate() = %v, want empty non-nil slice", got)
	}
}

func TestMalformed(t *testing.T) {
	got := Malformed(sampleEntries())

	var descs []string
	for _, e := range got {
		descs = append(descs, e.Description)
	}
	want := []string{"malformed", "near miss", "no date"}
	if !reflect.DeepEqual(descs, want) {
		t.Errorf("Malformed() = %v, want %v", descs, want)
	}
}

func TestValidDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-01-15", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-1-15", false},
		{"15/01/2024", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidDate(tt.in); got != tt.want {
			t.Errorf("ValidDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
