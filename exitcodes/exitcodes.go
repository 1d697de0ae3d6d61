// Package exitcodes defines the standard exit codes used by mongo-acceptor.
package exitcodes

// Exit code constants used by the runner and the suite subcommand:
//
// * Success (0): every selected suite subprocess exited zero
// * SuiteFailure (1): at least one suite subprocess exited non-zero
// * RuntimeErr (2): configuration errors, unreachable database, panics
const (
	Success      = 0
	SuiteFailure = 1
	RuntimeErr   = 2
)
