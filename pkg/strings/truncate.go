// Package strings holds helpers for fitting text into table cells.
package strings

import (
	"strings"
)

// DefaultCellMaxLen is the width used for free-text table cells such as
// error messages.
const DefaultCellMaxLen = 60

// DefaultPathMaxLen is the width used for target and input columns.
const DefaultPathMaxLen = 48

// MinTruncateLen is the smallest width that still leaves room for one
// character plus the ellipsis.
const MinTruncateLen = 4

const ellipsis = "..."

// SingleLine collapses every run of whitespace, newlines included, into a
// single space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns s on a single line, cut to maxLen runes with a trailing
// "..." when it is longer.
func Truncate(s string, maxLen int) string {
	maxLen = max(maxLen, MinTruncateLen)

	runes := []rune(SingleLine(s))
	if len(runes) > maxLen {
		return string(runes[:maxLen-len(ellipsis)]) + ellipsis
	}
	return string(runes)
}

// TruncatePath keeps the end of a path or URL, which is the part that tells
// targets apart, and marks the cut with a leading "...".
func TruncatePath(p string, maxLen int) string {
	maxLen = max(maxLen, MinTruncateLen)

	runes := []rune(SingleLine(p))
	if len(runes) <= maxLen {
		return string(runes)
	}
	tail := runes[len(runes)-(maxLen-len(ellipsis)):]
	return ellipsis + string(tail)
}
