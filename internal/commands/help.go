package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"dayplan/internal/config"
	"dayplan/internal/exitcode"
	"dayplan/internal/service"
)

func init() {
	Register(&HelpCmd{registry: DefaultRegistry})
}

// HelpCmd prints usage for every registered command.
type HelpCmd struct {
	local
	registry *Registry
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "dayplan help" }

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Services, args []string, out, errOut io.Writer) int {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  dayplan            Generate and deliver today's plan (same as plan)")

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, cmd := range c.registry.All() {
		line := "  " + cmd.Usage()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			line += " (alias: " + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\n", line, cmd.Synopsis())
	}
	tw.Flush()

	fmt.Fprint(out, helpFooter)
	return exitcode.Success
}

const helpFooter = `
Common flags:
  --config <dir>   Override config directory
  --env <file>     Load credentials from this .env file (default .env)
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Environment:
  NOTION_TOKEN, DATABASE_ID      Notion task source (DAYPLAN_TASK_SOURCE=notion)
  CHAT_API_KEY                   Chat completion API key
  PUSH_BULLET_API_KEY            Push notifications
  MAIL_FROM, PASSWORD_GMAIL      Email over SMTP (MAIL_TRANSPORT=smtp)

Exit codes:
  0 success, 1 usage error, 2 configuration or login error, 3 backend error
`
