package output

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Title title-cases a heading: "load raw" becomes "Load Raw".
func Title(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "-", " "))
}

// FormatHeader formats a markdown header at the given level.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + Title(text)
}

// FormatKeyValue formats a markdown key/value line.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("**%s:** %s", key, value)
}

// StatusIcon returns the symbol shown before a status line.
func StatusIcon(status string) string {
	switch status {
	case "success", "completed":
		return "✓"
	case "degraded", "skipped":
		return "!"
	case "failed":
		return "✗"
	default:
		return "•"
	}
}
