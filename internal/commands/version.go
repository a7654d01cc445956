package commands

import (
	"context"
	"fmt"
	"io"

	"dayplan/internal/config"
	"dayplan/internal/exitcode"
	"dayplan/internal/service"
)

// Version is the application version. Set at build time.
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// VersionCmd implements the version command.
type VersionCmd struct{ local }

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print version" }
func (c *VersionCmd) Usage() string     { return "dayplan version" }

func (c *VersionCmd) Run(ctx context.Context, cfg *config.Config, svc *service.Services, args []string, out, errOut io.Writer) int {
	fmt.Fprintf(out, "dayplan %s\n", Version)
	return exitcode.Success
}
