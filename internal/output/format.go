// Package output provides the text formatters shared by commands and the run pipeline.
package output

import (
	"fmt"
	"io"
	"strings"

	"dayplan/internal/service"
)

const (
	// TaskMarker prefixes every task title line.
	TaskMarker = "🟢"

	// DescriptionPrefix indents the description line under its title.
	DescriptionPrefix = "   ↳ "

	// Separator is the rule printed around section headers.
	Separator = "------------"
)

// FormatTasks normalizes tasks into the flat text block handed to the prompt.
//
// Expectations:
//   - Skips tasks whose title is empty after trimming
//   - Emits "🟢 <title>" per kept task
//   - Emits "   ↳ <description>" only when the trimmed description is non-empty
//   - Follows each kept task with one blank line
//   - Joins lines with "\n"; no tasks yields ""
func FormatTasks(tasks []service.Task) string {
	var lines []string
	for _, task := range tasks {
		title := strings.TrimSpace(task.Title)
		if title == "" {
			continue
		}
		lines = append(lines, TaskMarker+" "+title)
		if desc := strings.TrimSpace(task.Description); desc != "" {
			lines = append(lines, DescriptionPrefix+desc)
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// FormatHeader writes a section header framed by separator lines.
func FormatHeader(w io.Writer, title string) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, Separator)
}

// CountTasks returns how many tasks FormatTasks would emit.
func CountTasks(tasks []service.Task) int {
	n := 0
	for _, task := range tasks {
		if strings.TrimSpace(task.Title) != "" {
			n++
		}
	}
	return n
}
