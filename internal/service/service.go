// Package service defines the backend-agnostic types and interfaces for the daily plan run.
package service

import (
	"context"
	"errors"
)

// ErrPartial marks a fetch that stopped early; the tasks returned alongside it
// are the pages accumulated before the failure.
var ErrPartial = errors.New("partial results")

// TaskSource retrieves task records from a remote task tracker.
// All task API calls go through this interface.
// Commands never import a tracker SDK directly.
type TaskSource interface {
	// QueryTasks returns every task matching filter, following pagination
	// until the backend reports no further pages.
	// Results are in backend order (no client-side sorting or deduplication).
	// On a failed page it returns the tasks fetched so far and an error
	// wrapping ErrPartial.
	QueryTasks(ctx context.Context, filter *Filter) ([]Task, error)
}

// PlanGenerator turns a prompt into plan text.
type PlanGenerator interface {
	// GeneratePlan returns the generated plan, or an error when no plan is
	// available. Callers must not deliver anything on error.
	GeneratePlan(ctx context.Context, prompt string) (string, error)
}

// Notifier delivers a short title/body push notification.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Mailer delivers a rendered email.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// Services bundles the collaborators a command needs.
// Push and Mail are nil when their channel is not configured.
type Services struct {
	Tasks   TaskSource
	Planner PlanGenerator
	Push    Notifier
	Mail    Mailer
}
