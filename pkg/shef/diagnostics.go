package shef

import (
	"fmt"
	"log"
)

// Diagnostics implements C8: error/warning counters, the distinct-error
// de-duplication the original keeps per enclosing message, and the
// max_err abort threshold. Reporting always names the input source and
// the line at which the problem occurred, and each message contributes at
// most one "for message logged above" context line.
type Diagnostics struct {
	Source string
	MaxErr int

	ErrCount            int
	DistinctErrCount    int
	WarnCount           int

	lastErrMessageStart int
	contextLogged       map[int]bool

	Logf func(format string, args ...any)
}

// NewDiagnostics returns a Diagnostics that logs through the stdlib log
// package, matching every teacher cmd/* entrypoint's use of log.Printf.
func NewDiagnostics(source string, maxErr int) *Diagnostics {
	return &Diagnostics{
		Source:              source,
		MaxErr:              maxErr,
		lastErrMessageStart: -1,
		contextLogged:       make(map[int]bool),
		Logf:                log.Printf,
	}
}

// Error records a ParseError/SemanticError/RangeError at line, attributed
// to the message starting at messageStartLine. It returns ErrMaxErrorsExceeded
// once the distinct-message error count exceeds MaxErr.
func (d *Diagnostics) Error(messageStartLine, line int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	d.ErrCount++
	if messageStartLine != d.lastErrMessageStart {
		d.DistinctErrCount++
		d.lastErrMessageStart = messageStartLine
		d.Logf("%s: line %d: ERROR: %s", d.Source, line, msg)
	} else {
		d.Logf("%s: line %d: ERROR: %s", d.Source, line, msg)
		if !d.contextLogged[messageStartLine] {
			d.Logf("%s: line %d: for message logged above", d.Source, messageStartLine)
			d.contextLogged[messageStartLine] = true
		}
	}
	if d.DistinctErrCount > d.MaxErr {
		return ErrMaxErrorsExceeded
	}
	return nil
}

// Warning records a Warning-kind diagnostic; it never aborts.
func (d *Diagnostics) Warning(line int, format string, args ...any) {
	d.WarnCount++
	d.Logf("%s: line %d: WARNING: %s", d.Source, line, fmt.Sprintf(format, args...))
}

// Critical records a ConfigError/OutputError and always aborts.
func (d *Diagnostics) Critical(line int, format string, args ...any) error {
	d.Logf("%s: line %d: CRITICAL: %s", d.Source, line, fmt.Sprintf(format, args...))
	return ErrCritical
}

// Summary renders a one-line run summary, printed by cmd/shefit at close.
func (d *Diagnostics) Summary() string {
	return fmt.Sprintf("%s: %d error(s) (%d distinct), %d warning(s)", d.Source, d.ErrCount, d.DistinctErrCount, d.WarnCount)
}
