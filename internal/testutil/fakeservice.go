// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"dayplan/internal/service"
)

// FakeSource is an in-memory service.TaskSource.
// It applies the filter the way a real backend does.
type FakeSource struct {
	mu      sync.Mutex
	tasks   []service.Task
	filters []*service.Filter

	// Err is returned alongside the matching tasks, so wrapping
	// service.ErrPartial simulates a fetch that stopped midway.
	Err error
}

// NewFakeSource creates a FakeSource holding tasks.
func NewFakeSource(tasks ...service.Task) *FakeSource {
	return &FakeSource{tasks: tasks}
}

// QueryTasks implements service.TaskSource.
func (f *FakeSource) QueryTasks(ctx context.Context, filter *service.Filter) ([]service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)

	var out []service.Task
	for _, t := range f.tasks {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	return out, f.Err
}

// Filters returns the filters received so far.
func (f *FakeSource) Filters() []*service.Filter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*service.Filter(nil), f.filters...)
}

// FakePlanner is a service.PlanGenerator returning a canned plan.
type FakePlanner struct {
	mu      sync.Mutex
	prompts []string

	Plan string
	Err  error
}

// GeneratePlan implements service.PlanGenerator.
func (f *FakePlanner) GeneratePlan(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Plan, nil
}

// Prompts returns the prompts received so far.
func (f *FakePlanner) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// Push is one recorded notification.
type Push struct {
	Title string
	Body  string
}

// FakeNotifier records notifications.
type FakeNotifier struct {
	mu     sync.Mutex
	pushes []Push

	Err error
}

// Notify implements service.Notifier.
func (f *FakeNotifier) Notify(ctx context.Context, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, Push{Title: title, Body: body})
	return f.Err
}

// Pushes returns the notifications sent so far.
func (f *FakeNotifier) Pushes() []Push {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Push(nil), f.pushes...)
}

// FakeMailer records emails.
type FakeMailer struct {
	mu     sync.Mutex
	emails []service.Email

	Err error
}

// Send implements service.Mailer.
func (f *FakeMailer) Send(ctx context.Context, email service.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, email)
	return f.Err
}

// Emails returns the emails sent so far.
func (f *FakeMailer) Emails() []service.Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]service.Email(nil), f.emails...)
}

// NewFakeServices wires fresh fakes into a service.Services.
func NewFakeServices(tasks ...service.Task) (*service.Services, *FakeSource, *FakePlanner, *FakeNotifier, *FakeMailer) {
	src := NewFakeSource(tasks...)
	pl := &FakePlanner{Plan: "☀️ **Manhã**\n- Meditar"}
	push := &FakeNotifier{}
	mailer := &FakeMailer{}
	return &service.Services{Tasks: src, Planner: pl, Push: push, Mail: mailer}, src, pl, push, mailer
}
