// Package render turns chat text with light markdown into terminal output.
// Only **bold** spans and line breaks are understood.
package render

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

var boldStyle = lipgloss.NewStyle().Bold(true)

// Terminal renders bold spans with terminal styling and keeps newlines.
func Terminal(text string) string {
	return boldPattern.ReplaceAllStringFunc(text, func(m string) string {
		inner := boldPattern.FindStringSubmatch(m)[1]
		return boldStyle.Render(inner)
	})
}
