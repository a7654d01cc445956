// Package dayplan runs the daily plan pipeline:
// fetch -> normalize -> prompt -> generate -> deliver.
package dayplan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dayplan/internal/log"
	"dayplan/internal/mail"
	"dayplan/internal/output"
	"dayplan/internal/prompt"
	"dayplan/internal/service"
)

// Notification titles.
const (
	SuccessTitle = "Plano do Dia Enviado!"
	FailureTitle = "Falha ao gerar o Plano do Dia"
)

// FailureBody is the push body sent when no plan could be generated.
func FailureBody(day time.Time) string {
	return fmt.Sprintf("Não foi possível gerar o plano de %s. Verifique os logs.", day.Format(prompt.DateLayout))
}

// Options selects what a run delivers.
type Options struct {
	// Prompt renders the prompt; nil selects the built-in template with
	// Sunday as the weekly review day.
	Prompt *prompt.Builder

	// Location is where "today" is read for the prompt's weekday and date.
	// Without Date the task filter uses ref's UTC calendar day.
	Location *time.Location

	// Date pins the run to a calendar day (YYYY-MM-DD). The filter matches
	// it as given and the prompt shows it at noon in Location.
	Date string

	Push    bool
	Email   bool
	HTMLOut string

	// DryRun generates the plan but delivers nothing.
	DryRun bool
}

// Result describes one run.
type Result struct {
	RunID    string
	Filter   service.Filter
	Tasks    []service.Task
	TaskText string
	Prompt   string
	Plan     string

	// Partial is set when the fetch stopped early and the plan was built
	// from the tasks fetched until then.
	Partial bool

	// Attempted counts the push and email channels the run tried.
	Attempted int
	Pushed    bool
	Emailed   bool
	HTMLPath  string

	// DeliveryErrors holds push, email and artifact failures. They never
	// abort the run.
	DeliveryErrors []error
}

// Undelivered reports whether delivery was attempted and every channel failed.
func (r *Result) Undelivered() bool {
	return r.Attempted > 0 && !r.Pushed && !r.Emailed
}

// Runner executes the pipeline against a set of services.
type Runner struct {
	svc  *service.Services
	opts Options
}

// New creates a Runner.
func New(svc *service.Services, opts Options) *Runner {
	if opts.Prompt == nil {
		opts.Prompt = prompt.New(time.Sunday)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Runner{svc: svc, opts: opts}
}

// Collect fetches the tasks due on the run's day and normalizes them.
// A partial fetch is not an error: the result carries Partial instead.
func (r *Runner) Collect(ctx context.Context, ref time.Time) (*Result, error) {
	runID := uuid.NewString()
	logger := log.With("run", runID)
	return r.collect(ctx, ref, runID, &logger)
}

func (r *Runner) collect(ctx context.Context, ref time.Time, runID string, logger *zerolog.Logger) (*Result, error) {
	filter, _, err := r.day(ref)
	if err != nil {
		return nil, err
	}
	res := &Result{RunID: runID, Filter: *filter}

	logger.Info().Str("date", filter.Date).Msg("dayplan: fetching tasks")
	tasks, err := r.svc.Tasks.QueryTasks(ctx, filter)
	switch {
	case errors.Is(err, service.ErrPartial):
		res.Partial = true
		logger.Warn().Err(err).Int("fetched", len(tasks)).Msg("dayplan: continuing with partial task list")
	case err != nil:
		return nil, fmt.Errorf("dayplan: fetch tasks: %w", err)
	}

	res.Tasks = tasks
	res.TaskText = output.FormatTasks(tasks)
	logger.Info().Int("tasks", len(tasks)).Int("listed", output.CountTasks(tasks)).Msg("dayplan: tasks normalized")
	return res, nil
}

// day returns the task filter and the prompt moment for ref.
func (r *Runner) day(ref time.Time) (*service.Filter, time.Time, error) {
	if r.opts.Date == "" {
		return service.DueOn(ref), ref.In(r.opts.Location), nil
	}
	d, err := time.Parse(service.DateLayout, r.opts.Date)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("dayplan: invalid date %q", r.opts.Date)
	}
	noon := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, r.opts.Location)
	return &service.Filter{Date: r.opts.Date}, noon, nil
}

// BuildPrompt runs Collect and renders the prompt for ref.
func (r *Runner) BuildPrompt(ctx context.Context, ref time.Time) (*Result, error) {
	runID := uuid.NewString()
	logger := log.With("run", runID)
	return r.buildPrompt(ctx, ref, runID, &logger)
}

func (r *Runner) buildPrompt(ctx context.Context, ref time.Time, runID string, logger *zerolog.Logger) (*Result, error) {
	res, err := r.collect(ctx, ref, runID, logger)
	if err != nil {
		return nil, err
	}
	_, at, err := r.day(ref)
	if err != nil {
		return nil, err
	}
	p, err := r.opts.Prompt.Build(res.TaskText, at)
	if err != nil {
		return nil, fmt.Errorf("dayplan: build prompt: %w", err)
	}
	res.Prompt = p
	return res, nil
}

// Run executes the whole pipeline for the day of ref.
//
// Expectations:
//   - Filters on open tasks due on Options.Date, or on ref's UTC calendar day
//   - Continues with a partial task list, marking the result Partial
//   - On generation failure sends FailureTitle instead of a plan and returns the planner's error
//   - Never delivers an empty plan or the raw task list
//   - Delivery failures are logged and recorded in the result, not returned
func (r *Runner) Run(ctx context.Context, ref time.Time) (*Result, error) {
	runID := uuid.NewString()
	logger := log.With("run", runID)

	res, err := r.buildPrompt(ctx, ref, runID, &logger)
	if err != nil {
		return nil, err
	}

	_, day, err := r.day(ref)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("prompt_bytes", len(res.Prompt)).Msg("dayplan: generating plan")
	plan, err := r.svc.Planner.GeneratePlan(ctx, res.Prompt)
	if err != nil {
		logger.Error().Err(err).Msg("dayplan: plan unavailable")
		if r.opts.Push && !r.opts.DryRun && r.svc.Push != nil {
			if perr := r.svc.Push.Notify(ctx, FailureTitle, FailureBody(day)); perr != nil {
				logger.Error().Err(perr).Msg("dayplan: failure notification not sent")
				res.DeliveryErrors = append(res.DeliveryErrors, perr)
			}
		}
		return res, fmt.Errorf("dayplan: %w", err)
	}
	res.Plan = plan

	if r.opts.DryRun {
		logger.Info().Msg("dayplan: dry run, nothing delivered")
		return res, nil
	}

	r.deliver(ctx, res, day, &logger)
	return res, nil
}

func (r *Runner) deliver(ctx context.Context, res *Result, day time.Time, logger *zerolog.Logger) {
	if r.opts.Push {
		res.Attempted++
		if err := r.push(ctx, res.Plan); err != nil {
			logger.Error().Err(err).Msg("dayplan: push failed")
			res.DeliveryErrors = append(res.DeliveryErrors, err)
		} else {
			res.Pushed = true
			logger.Info().Msg("dayplan: push sent")
		}
	}

	if r.opts.Email {
		res.Attempted++
	} else if r.opts.HTMLOut == "" {
		return
	}

	email, err := mail.Compose(res.Plan, day)
	if err != nil {
		logger.Error().Err(err).Msg("dayplan: render email")
		res.DeliveryErrors = append(res.DeliveryErrors, err)
		return
	}

	if r.opts.HTMLOut != "" {
		if err := os.WriteFile(r.opts.HTMLOut, []byte(email.HTML), 0o644); err != nil {
			logger.Error().Err(err).Str("path", r.opts.HTMLOut).Msg("dayplan: write html")
			res.DeliveryErrors = append(res.DeliveryErrors, fmt.Errorf("dayplan: write html: %w", err))
		} else {
			res.HTMLPath = r.opts.HTMLOut
			logger.Info().Str("path", r.opts.HTMLOut).Msg("dayplan: html written")
		}
	}

	if r.opts.Email {
		if err := r.email(ctx, email); err != nil {
			logger.Error().Err(err).Msg("dayplan: email failed")
			res.DeliveryErrors = append(res.DeliveryErrors, err)
		} else {
			res.Emailed = true
		}
	}
}

func (r *Runner) push(ctx context.Context, plan string) error {
	if r.svc.Push == nil {
		return errors.New("dayplan: push notifier not configured")
	}
	return r.svc.Push.Notify(ctx, SuccessTitle, plan)
}

func (r *Runner) email(ctx context.Context, email service.Email) error {
	if r.svc.Mail == nil {
		return errors.New("dayplan: mailer not configured")
	}
	return r.svc.Mail.Send(ctx, email)
}
