// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"dayplan/internal/config"
	"dayplan/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsServices returns true if the command talks to a task source,
	// planner or delivery channel. help, version, login and logout return false.
	NeedsServices() bool

	// Channels reports which parts of the pipeline the parsed flags enable.
	// Only consulted when NeedsServices is true.
	Channels() config.Channels

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Validate checks parsed flag values before any config is required.
	Validate() error

	// Run executes the command.
	// cfg is always provided and loaded.
	// svc is nil if NeedsServices() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc *service.Services, args []string, out, errOut io.Writer) int
}

// local is embedded by commands that never reach a backend.
type local struct{}

func (local) NeedsServices() bool            { return false }
func (local) Channels() config.Channels      { return config.Channels{} }
func (local) RegisterFlags(fs *flag.FlagSet) {}
func (local) Validate() error                { return nil }
