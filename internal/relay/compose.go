// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relay

import (
	"fmt"
	"unicode/utf16"
)

// Compose builds the outgoing message: header, body, footer. The result
// never exceeds MaxMessageLength UTF-16 code units. When text does not fit
// it is cut to the body budget minus truncationSlack and the truncation
// marker is appended.
func Compose(text, correlationID, clock string) string {
	header := fmt.Sprintf("🚨 گزارش سیستم ZLD #%s\n📅 %s\n\n", shortID(correlationID), clock)

	available := MaxMessageLength - utf16Len(header) - utf16Len(footer)
	body := text
	if utf16Len(body) > available {
		body = utf16Prefix(body, available-truncationSlack) + truncationMarker
	}

	return header + body + footer
}

// shortID returns the last four characters of id.
func shortID(id string) string {
	r := []rune(id)
	if len(r) <= 4 {
		return id
	}
	return string(r[len(r)-4:])
}

// utf16Len counts s in UTF-16 code units, the unit the Bot API limits by.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// utf16Prefix returns the longest prefix of s that fits in n UTF-16 code
// units without splitting a surrogate pair.
func utf16Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	used := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if used+w > n {
			return s[:i]
		}
		used += w
	}
	return s
}
