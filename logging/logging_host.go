//go:build !tinygo

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// L is the package-level logger. It defaults to stderr at info level and is
// reconfigured by Setup.
var L = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "gnd",
})

// Options configures Setup.
type Options struct {
	Level string // debug, info, warn, error

	// File, when set, mirrors the log into a size-rotated file.
	File       string
	MaxSizeMB  int
	MaxBackups int

	// Out replaces stderr (tests).
	Out io.Writer
}

// Setup rebuilds L. The returned closer releases the rotated file, if any.
func Setup(o Options) (io.Closer, error) {
	level := log.InfoLevel
	if o.Level != "" {
		lv, err := log.ParseLevel(strings.ToLower(o.Level))
		if err != nil {
			return nil, err
		}
		level = lv
	}

	var out io.Writer = os.Stderr
	if o.Out != nil {
		out = o.Out
	}

	var closer io.Closer = nopCloser{}
	if o.File != "" {
		lj := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
		}
		out = io.MultiWriter(out, lj)
		closer = lj
	}

	L = log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "gnd",
	})
	return closer, nil
}

// SetDebug toggles debug level on L.
func SetDebug(enabled bool) {
	if enabled {
		L.SetLevel(log.DebugLevel)
	} else {
		L.SetLevel(log.InfoLevel)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
