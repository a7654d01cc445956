package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"dayplan/internal/config"
	"dayplan/internal/dayplan"
	"dayplan/internal/exitcode"
	"dayplan/internal/output"
	"dayplan/internal/service"
)

func init() {
	Register(&TasksCmd{})
}

// TasksCmd prints the normalized block of today's open tasks.
type TasksCmd struct {
	day dayFlag
}

func (c *TasksCmd) Name() string              { return "tasks" }
func (c *TasksCmd) Aliases() []string         { return []string{"ls"} }
func (c *TasksCmd) Synopsis() string          { return "Print today's open tasks" }
func (c *TasksCmd) Usage() string             { return "dayplan tasks [--date YYYY-MM-DD]" }
func (c *TasksCmd) NeedsServices() bool       { return true }
func (c *TasksCmd) Channels() config.Channels { return config.Channels{} }
func (c *TasksCmd) Validate() error           { return c.day.resolve() }

// SetDate sets the --date value (for testing).
func (c *TasksCmd) SetDate(s string) { c.day.SetDate(s) }

func (c *TasksCmd) RegisterFlags(fs *flag.FlagSet) {
	c.day.register(fs)
}

func (c *TasksCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Services, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	res, err := dayplan.New(svc, dayplan.Options{Location: cfg.Location, Date: c.day.value}).Collect(ctx, c.day.ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	warnPartial(res, errOut)

	if res.TaskText == "" {
		if !cfg.Quiet {
			fmt.Fprintf(out, "no tasks due on %s\n", res.Filter.Date)
		}
		return exitcode.Success
	}

	if !cfg.Quiet {
		output.FormatHeader(out, fmt.Sprintf("%s (%d)", res.Filter.Date, output.CountTasks(res.Tasks)))
	}
	fmt.Fprint(out, res.TaskText)
	return exitcode.Success
}

func warnPartial(res *dayplan.Result, errOut io.Writer) {
	if res.Partial {
		fmt.Fprintf(errOut, "warning: task list incomplete, using the %d tasks fetched\n", len(res.Tasks))
	}
}

