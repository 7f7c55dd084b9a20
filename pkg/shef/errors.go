package shef

import "errors"

// ErrCritical signals an unrecoverable condition (ConfigError, OutputError,
// or an explicit critical()) -- the decoder aborts immediately with exit
// code -1 (§4.8, §7).
var ErrCritical = errors.New("shef: critical error")

// ErrMaxErrorsExceeded signals that the distinct-error-message counter
// exceeded max_err -- the decoder aborts with exit code -2 (§4.8, §7).
var ErrMaxErrorsExceeded = errors.New("shef: exceeded max_err, aborting")

// ExitCode maps a Decoder.Run error to the legacy shefit process exit code
// (§6).
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrMaxErrorsExceeded):
		return -2
	case errors.Is(err, ErrCritical):
		return -1
	default:
		return -1
	}
}
