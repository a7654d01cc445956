package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"dayplan/internal/config"
	"dayplan/internal/dayplan"
	"dayplan/internal/exitcode"
	"dayplan/internal/prompt"
	"dayplan/internal/service"
)

func init() {
	Register(&PromptCmd{})
}

// PromptCmd prints the prompt that plan would submit, without calling the planner.
type PromptCmd struct {
	day dayFlag
}

func (c *PromptCmd) Name() string              { return "prompt" }
func (c *PromptCmd) Aliases() []string         { return nil }
func (c *PromptCmd) Synopsis() string          { return "Print the plan prompt" }
func (c *PromptCmd) Usage() string             { return "dayplan prompt [--date YYYY-MM-DD]" }
func (c *PromptCmd) NeedsServices() bool       { return true }
func (c *PromptCmd) Channels() config.Channels { return config.Channels{} }
func (c *PromptCmd) Validate() error           { return c.day.resolve() }

// SetDate sets the --date value (for testing).
func (c *PromptCmd) SetDate(s string) { c.day.SetDate(s) }

func (c *PromptCmd) RegisterFlags(fs *flag.FlagSet) {
	c.day.register(fs)
}

func (c *PromptCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Services, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	builder, err := prompt.Load(cfg.PromptTemplate, cfg.WeeklyDay)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.ConfigError
	}

	runner := dayplan.New(svc, dayplan.Options{Prompt: builder, Location: cfg.Location, Date: c.day.value})
	res, err := runner.BuildPrompt(ctx, c.day.ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	warnPartial(res, errOut)

	fmt.Fprintln(out, res.Prompt)
	return exitcode.Success
}
