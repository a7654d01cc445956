// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates the run completed, including runs that delivered a
	// plan built from a partial task fetch.
	Success = 0

	// UserError indicates bad arguments or an unknown command.
	UserError = 1

	// ConfigError indicates missing credentials, bad configuration or a
	// missing OAuth login.
	ConfigError = 2

	// BackendError indicates the plan could not be generated or delivered.
	BackendError = 3
)
