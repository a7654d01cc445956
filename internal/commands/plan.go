package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"dayplan/internal/config"
	"dayplan/internal/dayplan"
	"dayplan/internal/exitcode"
	"dayplan/internal/planner"
	"dayplan/internal/prompt"
	"dayplan/internal/service"
)

func init() {
	Register(&PlanCmd{})
}

// PlanCmd runs the whole pipeline and delivers the plan.
// It is the command run when dayplan is invoked without arguments.
type PlanCmd struct {
	day     dayFlag
	noPush  bool
	email   bool
	htmlOut string
	dryRun  bool
}

func (c *PlanCmd) Name() string        { return "plan" }
func (c *PlanCmd) Aliases() []string   { return []string{"run"} }
func (c *PlanCmd) Synopsis() string    { return "Generate and deliver today's plan" }
func (c *PlanCmd) NeedsServices() bool { return true }
func (c *PlanCmd) Validate() error     { return c.day.resolve() }

func (c *PlanCmd) Usage() string {
	return "dayplan plan [--date YYYY-MM-DD] [--no-push] [--email] [--html-out <path>] [--dry-run]"
}

func (c *PlanCmd) RegisterFlags(fs *flag.FlagSet) {
	c.day.register(fs)
	fs.BoolVar(&c.noPush, "no-push", false, "")
	fs.BoolVar(&c.email, "email", false, "")
	fs.StringVar(&c.htmlOut, "html-out", "", "")
	fs.BoolVar(&c.dryRun, "dry-run", false, "")
}

// Channels implements Command. A dry run only needs the planner.
func (c *PlanCmd) Channels() config.Channels {
	return config.Channels{
		Generate: true,
		Push:     !c.noPush && !c.dryRun,
		Email:    c.email && !c.dryRun,
	}
}

// SetOptions sets the flag values (for testing).
func (c *PlanCmd) SetOptions(date string, noPush, email, dryRun bool, htmlOut string) {
	c.day.SetDate(date)
	c.noPush = noPush
	c.email = email
	c.dryRun = dryRun
	c.htmlOut = htmlOut
}

func (c *PlanCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Services, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	builder, err := prompt.Load(cfg.PromptTemplate, cfg.WeeklyDay)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.ConfigError
	}

	htmlOut := c.htmlOut
	if htmlOut == "" {
		htmlOut = cfg.HTMLOut
	}

	ch := c.Channels()
	runner := dayplan.New(svc, dayplan.Options{
		Prompt:   builder,
		Location: cfg.Location,
		Date:     c.day.value,
		Push:     ch.Push,
		Email:    ch.Email,
		HTMLOut:  htmlOut,
		DryRun:   c.dryRun,
	})

	res, err := runner.Run(ctx, c.day.ref)
	if res != nil {
		warnPartial(res, errOut)
	}
	if err != nil {
		if errors.Is(err, planner.ErrPlanUnavailable) {
			fmt.Fprintf(errOut, "error: plan unavailable: %v\n", err)
		} else {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		}
		return exitcode.BackendError
	}

	if c.dryRun {
		fmt.Fprintln(out, res.Plan)
		return exitcode.Success
	}

	for _, derr := range res.DeliveryErrors {
		fmt.Fprintf(errOut, "warning: %v\n", derr)
	}
	if res.Undelivered() {
		fmt.Fprintln(errOut, "error: plan not delivered")
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok (%s)\n", deliveredTo(res))
	}
	return exitcode.Success
}

func deliveredTo(res *dayplan.Result) string {
	var parts []string
	if res.Pushed {
		parts = append(parts, "push")
	}
	if res.Emailed {
		parts = append(parts, "email")
	}
	if res.HTMLPath != "" {
		parts = append(parts, res.HTMLPath)
	}
	if len(parts) == 0 {
		return "nothing delivered"
	}
	return strings.Join(parts, ", ")
}
