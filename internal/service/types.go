// Package service defines the backend-agnostic types and interfaces for the daily plan run.
package service

import "time"

// DateLayout is the calendar-date format used by filters and deadlines.
const DateLayout = "2006-01-02"

// Task represents a single task record fetched from a task source.
// Every field is optional in the raw payload; missing values are zero.
type Task struct {
	ID          string
	Title       string
	Description string
	Done        bool
	Deadline    string // YYYY-MM-DD, empty when unset
}

// Filter is a conjunctive predicate: Done == false AND Deadline == Date.
// A nil *Filter means no filtering.
type Filter struct {
	Done bool
	Date string // YYYY-MM-DD
}

// DueOn returns the filter for open tasks whose deadline is the UTC calendar day of t.
func DueOn(t time.Time) *Filter {
	return &Filter{Done: false, Date: t.UTC().Format(DateLayout)}
}

// Matches reports whether task satisfies the filter. A nil filter matches everything.
func (f *Filter) Matches(task Task) bool {
	if f == nil {
		return true
	}
	return task.Done == f.Done && task.Deadline == f.Date
}

// Email is a rendered plan message ready for a mail transport.
type Email struct {
	Subject string
	HTML    string
	Plain   string
}
