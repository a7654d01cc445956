package commands

import (
	"context"
	"fmt"
	"io"

	"dayplan/internal/config"
	"dayplan/internal/exitcode"
	"dayplan/internal/service"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd removes the stored Google token. oauth_client.json is kept.
type LogoutCmd struct{ local }

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove stored Google credentials" }
func (c *LogoutCmd) Usage() string     { return "dayplan logout [common flags]" }

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Services, args []string, out, errOut io.Writer) int {
	if !cfg.HasToken() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := cfg.RemoveToken(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.ConfigError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
