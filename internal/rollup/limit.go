package rollup

import "unicode/utf8"

// MaxLength is the longest post the publisher accepts, in characters
const MaxLength = 280

const ellipsis = "..."

// EnforceLimit cuts text longer than MaxLength characters to the first
// MaxLength-3 characters plus "...". It reports whether text was cut.
func EnforceLimit(text string) (string, bool) {
	if utf8.RuneCountInString(text) <= MaxLength {
		return text, false
	}
	keep := MaxLength - utf8.RuneCountInString(ellipsis)
	return string([]rune(text)[:keep]) + ellipsis, true
}
