package compose

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFallback(t *testing.T) {
	long := strings.Repeat("x", 60)

	tests := []struct {
		name         string
		descriptions []string
		expected     string
	}{
		{
			name:     "no entries",
			expected: NoTasksText,
		},
		{
			name:         "single entry",
			descriptions: []string{"Fixed login bug"},
			expected:     "Completed: Fixed login bug #Productivity #Progress",
		},
		{
			name:         "single entry exactly 50 characters",
			descriptions: []string{strings.Repeat("a", 50)},
			expected:     "Completed: " + strings.Repeat("a", 50) + " #Productivity #Progress",
		},
		{
			name:         "single long entry",
			descriptions: []string{long},
			expected:     "Completed: " + strings.Repeat("x", 50) + "... #Productivity #Progress",
		},
		{
			name:         "several entries",
			descriptions: []string{"Reviewed PRs", "Deployed"},
			expected:     "Made progress on 2 tasks today! Including: Reviewed PRs #DailyProgress #Productivity",
		},
		{
			name:         "several entries long first",
			descriptions: []string{long, "short"},
			expected:     "Made progress on 2 tasks today! Including: " + strings.Repeat("x", 30) + "... #DailyProgress #Productivity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in = entries(t, tt.descriptions...)
			if got := Fallback(in); got != tt.expected {
				t.Errorf("Fallback() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestTruncate_CountsCharacters(t *testing.T) {
	s := strings.Repeat("é", 40)
	got := Truncate(s, 30)
	if utf8.RuneCountInString(got) != 33 {
		t.Errorf("Truncate() kept %d characters, expected 30 plus ellipsis", utf8.RuneCountInString(got))
	}
	if !utf8.ValidString(got) {
		t.Error("Truncate() split a multi-byte character")
	}
	if Truncate("short", 30) != "short" {
		t.Error("Truncate() altered a short string")
	}
}
