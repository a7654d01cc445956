// Package prompt builds the daily plan prompt from normalized task text and a
// reference moment.
package prompt

import (
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"
)

// DateLayout is the day/month/year form used inside the prompt.
const DateLayout = "02/01/2006"

var weekdayNames = [...]string{
	time.Sunday:    "domingo",
	time.Monday:    "segunda-feira",
	time.Tuesday:   "terça-feira",
	time.Wednesday: "quarta-feira",
	time.Thursday:  "quinta-feira",
	time.Friday:    "sexta-feira",
	time.Saturday:  "sábado",
}

// WeekdayName returns the Portuguese name of d.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// Context is the immutable data a template renders.
type Context struct {
	Tasks       string
	Date        string
	Weekday     string
	WeeklyDay   string
	IsWeeklyDay bool
}

// NewContext derives the template data from the task text and the reference
// moment, in the moment's own location.
func NewContext(taskText string, ref time.Time, weeklyDay time.Weekday) Context {
	return Context{
		Tasks:       taskText,
		Date:        ref.Format(DateLayout),
		Weekday:     WeekdayName(ref.Weekday()),
		WeeklyDay:   WeekdayName(weeklyDay),
		IsWeeklyDay: ref.Weekday() == weeklyDay,
	}
}

// Builder renders prompts from a parsed template.
type Builder struct {
	tmpl      *template.Template
	weeklyDay time.Weekday
}

// New returns a Builder using DefaultTemplate.
func New(weeklyDay time.Weekday) *Builder {
	return &Builder{
		tmpl:      template.Must(template.New("prompt").Option("missingkey=error").Parse(DefaultTemplate)),
		weeklyDay: weeklyDay,
	}
}

// Parse returns a Builder for a custom template text.
func Parse(text string, weeklyDay time.Weekday) (*Builder, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("prompt: empty template")
	}
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("prompt: parse template: %w", err)
	}
	return &Builder{tmpl: tmpl, weeklyDay: weeklyDay}, nil
}

// Load returns a Builder for the template file at path, or the default
// template when path is empty.
func Load(path string, weeklyDay time.Weekday) (*Builder, error) {
	if path == "" {
		return New(weeklyDay), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prompt: read template: %w", err)
	}
	return Parse(string(data), weeklyDay)
}

// Build substitutes taskText and the weekday/date of ref into the template.
// For fixed inputs the output is byte-identical across calls.
func (b *Builder) Build(taskText string, ref time.Time) (string, error) {
	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, NewContext(taskText, ref, b.weeklyDay)); err != nil {
		return "", fmt.Errorf("prompt: render: %w", err)
	}
	return sb.String(), nil
}
