package utils

import (
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

// StripControlChars removes control characters except tab, newline and carriage return, then trims
func StripControlChars(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}
