package cliutil

import (
	"fmt"
	"strings"
)

// Truncate shortens s to at most n runes, appending an ellipsis when text
// was removed.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// ChildLine formats a line of worker output for the operator console.
func ChildLine(tag, line string) string {
	line = strings.TrimRight(line, " \t\r\n")
	if tag == "" {
		return line
	}
	return fmt.Sprintf("[%s] %s", tag, line)
}

// Rule returns a horizontal separator of width characters.
func Rule(width int) string {
	if width <= 0 {
		return ""
	}
	return strings.Repeat("=", width)
}
