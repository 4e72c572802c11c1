// Package debuglog is the station's single diagnostic entry point. A line
// goes to the local console, to the remote pub/sub channel, to both or to
// neither, depending on the registry's debug switches at the moment of the
// call. Nothing is returned: a failing sink never reaches the caller.
package debuglog

import (
	"fmt"
	"sync/atomic"

	"groundstation-go/config"
	"groundstation-go/errcode"
	"groundstation-go/logging"
)

// RemoteTag prefixes every line published on the remote channel.
const RemoteTag = "gnd:"

// Toggles is read on every call; *config.Registry implements it.
type Toggles interface {
	DebugToSerial() bool
	DebugToRemoteChannel() bool
}

// Console is the local line sink. Implementations add the line terminator.
type Console interface {
	WriteLine(line string) error
}

// Remote is a pub/sub channel. Available reports the capability at call
// time (e.g. broker connected); Publish is only attempted when it is true.
type Remote interface {
	Available() bool
	Publish(topic, payload string) error
}

// Stats counts what happened to lines since the logger was built.
type Stats struct {
	ConsoleLines    uint64
	ConsoleDrops    uint64
	RemotePublishes uint64
	RemoteDrops     uint64
}

// Logger is the debug facade. It holds no state besides counters.
type Logger struct {
	toggles Toggles
	console Console
	remote  Remote
	topic   string
	oplog   logging.Logger

	consoleLines    atomic.Uint64
	consoleDrops    atomic.Uint64
	remotePublishes atomic.Uint64
	remoteDrops     atomic.Uint64
}

// Option customises a Logger.
type Option func(*Logger)

// WithTopic overrides the remote topic.
func WithTopic(topic string) Option { return func(l *Logger) { l.topic = topic } }

// WithOpLog sets where absorbed sink failures are noted (debug level).
func WithOpLog(lg logging.Logger) Option { return func(l *Logger) { l.oplog = logging.OrNop(lg) } }

// New builds the facade. A nil console or remote behaves as an absent sink.
func New(t Toggles, console Console, remote Remote, opts ...Option) *Logger {
	l := &Logger{
		toggles: t,
		console: console,
		remote:  remote,
		topic:   config.RemoteLogTopic,
		oplog:   logging.Nop,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Log writes line to every enabled sink.
func (l *Logger) Log(line string) {
	if l.toggles.DebugToSerial() {
		l.toConsole(line)
	}
	if l.toggles.DebugToRemoteChannel() {
		l.toRemote(line)
	}
}

// Logf formats and logs.
func (l *Logger) Logf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...))
}

func (l *Logger) Stats() Stats {
	return Stats{
		ConsoleLines:    l.consoleLines.Load(),
		ConsoleDrops:    l.consoleDrops.Load(),
		RemotePublishes: l.remotePublishes.Load(),
		RemoteDrops:     l.remoteDrops.Load(),
	}
}

func (l *Logger) toConsole(line string) {
	if l.console == nil {
		l.consoleDrops.Add(1)
		return
	}
	if err := guard(func() error { return l.console.WriteLine(line) }); err != nil {
		l.consoleDrops.Add(1)
		l.oplog.Debug("console debug sink write failed", "err", err)
		return
	}
	l.consoleLines.Add(1)
}

func (l *Logger) toRemote(line string) {
	err := guard(func() error {
		if l.remote == nil || !l.remote.Available() {
			return errcode.SinkUnavailable
		}
		return l.remote.Publish(l.topic, RemoteTag+line)
	})
	if err != nil {
		l.remoteDrops.Add(1)
		l.oplog.Debug("remote debug line dropped", "topic", l.topic, "err", err)
		return
	}
	l.remotePublishes.Add(1)
}

// guard turns a sink panic into an error so diagnostics never take the
// caller down.
func guard(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errcode.New(errcode.SinkUnavailable, "debuglog", fmt.Sprint(r))
		}
	}()
	return f()
}
