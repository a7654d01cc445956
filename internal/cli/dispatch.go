// Package cli parses the command line and dispatches to registered commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"dayplan/internal/commands"
	"dayplan/internal/config"
	"dayplan/internal/exitcode"
	"dayplan/internal/log"
	"dayplan/internal/service"
)

// DefaultCommand runs when no command is given.
const DefaultCommand = "plan"

// ServicesFactory builds the collaborators a command needs from config.
// Used to inject backends during dispatch.
type ServicesFactory func(ctx context.Context, cfg *config.Config, ch config.Channels) (*service.Services, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServicesFactory
}

// NewDispatcher creates a new dispatcher with the given registry and services factory.
func NewDispatcher(registry *commands.Registry, factory ServicesFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return d.dispatch(ctx, DefaultCommand, nil, out, errOut)
	}

	cmdName := args[0]

	// Flags require a command
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var configDir, envFile string
	var quiet, debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.StringVar(&envFile, "env", config.DefaultEnvFile, "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	if err := cfg.Load(envFile); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.ConfigError
	}
	log.Init(errOut, logLevel(cfg), isTerminal(errOut))

	if err := cmd.Validate(); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	var svc *service.Services
	if cmd.NeedsServices() {
		ch := cmd.Channels()
		if err := cfg.Validate(ch); err != nil {
			if errors.Is(err, config.ErrMissing) {
				fmt.Fprintf(errOut, "error: %s\n", strings.TrimPrefix(err.Error(), "config: "))
			} else {
				fmt.Fprintf(errOut, "error: %s\n", err)
			}
			return exitcode.ConfigError
		}
		log.Debug().
			Str("source", cfg.TaskSource).
			Bool("push", ch.Push).
			Bool("email", ch.Email).
			Msg("config: all required values loaded")

		if d.factory == nil {
			fmt.Fprintln(errOut, "error: no backend configured")
			return exitcode.ConfigError
		}
		svc, err = d.factory(ctx, cfg, ch)
		if err != nil {
			if isAuthError(err) {
				fmt.Fprintf(errOut, "error: auth error: %s\n", err)
				return exitcode.ConfigError
			}
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
	}

	return cmd.Run(ctx, cfg, svc, positionalArgs, out, errOut)
}

// flagError rewrites flag package errors into the CLI's message style.
func flagError(err error) string {
	errStr := err.Error()

	if strings.Contains(errStr, "flag needs an argument") {
		parts := strings.Split(errStr, ":")
		name := strings.TrimSpace(parts[len(parts)-1])
		return "flag needs an argument: " + name
	}

	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		return "unknown flag: " + strings.TrimPrefix(errStr, "flag provided but not defined: ")
	}

	return errStr
}

func logLevel(cfg *config.Config) string {
	switch {
	case cfg.Debug:
		return "debug"
	case cfg.Quiet:
		return "error"
	default:
		return cfg.LogLevel
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func isAuthError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "token") ||
		strings.Contains(msg, "oauth") ||
		strings.Contains(msg, "not logged in")
}
