// Package logging is the operational log of the ground station: startup,
// wiring and absorbed sink failures. It is separate from the debug facade,
// whose lines are the station's diagnostic output.
package logging

// Logger is the subset of structured logging used across the repo.
// *github.com/charmbracelet/log.Logger satisfies it on host builds.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

// Nop discards everything.
var Nop Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Info(any, ...any)  {}
func (nopLogger) Warn(any, ...any)  {}
func (nopLogger) Error(any, ...any) {}

// OrNop returns l, or Nop when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop
	}
	return l
}
