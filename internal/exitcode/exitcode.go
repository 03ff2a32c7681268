// Package exitcode defines process exit codes.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates bad arguments or an unknown item.
	UserError = 1

	// AuthError indicates a missing or rejected session/token.
	AuthError = 2

	// BackendError indicates a network, API or provider failure.
	BackendError = 3
)
