package sink

import (
	"bytes"
	"context"
	"io"
	"strings"

	"groundstation-go/bus"
	"groundstation-go/logging"
)

// maxCommandLine bounds a console command line; longer lines are dropped.
const maxCommandLine = 256

// Router forwards externally received commands onto an allowed set of bus
// topics. Keys are slash paths such as "radio/tune".
type Router struct {
	conn   *bus.Connection
	routes map[string]bus.Topic
	log    logging.Logger
}

// NewRouter accepts commands for the given topics only.
func NewRouter(conn *bus.Connection, log logging.Logger, topics ...bus.Topic) *Router {
	r := &Router{conn: conn, routes: make(map[string]bus.Topic, len(topics)), log: logging.OrNop(log)}
	for _, t := range topics {
		r.routes[t.String()] = t
	}
	return r
}

// Paths lists the accepted command paths.
func (r *Router) Paths() []string {
	out := make([]string, 0, len(r.routes))
	for p := range r.routes {
		out = append(out, p)
	}
	return out
}

// Route publishes payload on the topic named by path. Leading and trailing
// slashes are ignored. An empty payload is published as nil.
func (r *Router) Route(path string, payload []byte) bool {
	t, ok := r.routes[strings.Trim(path, "/")]
	if !ok {
		r.log.Debug("command dropped, unknown topic", "path", path)
		return false
	}
	var p any
	if len(payload) > 0 {
		p = append([]byte(nil), payload...)
	}
	r.conn.Publish(r.conn.NewMessage(t, p, false))
	return true
}

// HandleLine routes one console line of the form "<path> [json]".
func (r *Router) HandleLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	path, rest, _ := strings.Cut(line, " ")
	return r.Route(path, []byte(strings.TrimSpace(rest)))
}

// Receiver is a cancellable byte source such as a UART.
type Receiver interface {
	RecvSomeContext(ctx context.Context, buf []byte) (int, error)
}

// ReaderReceiver adapts a blocking io.Reader. Cancellation is noticed
// between reads.
type ReaderReceiver struct{ R io.Reader }

func (rr ReaderReceiver) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return rr.R.Read(buf)
}

// ReadLines feeds console lines into the router until ctx ends or rx
// fails. CR, LF and CRLF all terminate a line.
func (r *Router) ReadLines(ctx context.Context, rx Receiver) error {
	buf := make([]byte, 64)
	var line []byte
	overflow := false

	for {
		n, err := rx.RecvSomeContext(ctx, buf)
		for _, c := range buf[:n] {
			if c != '\n' && c != '\r' {
				if len(line) < maxCommandLine {
					line = append(line, c)
				} else {
					overflow = true
				}
				continue
			}
			if overflow {
				r.log.Warn("command line too long, dropped", "max", maxCommandLine)
			} else if len(bytes.TrimSpace(line)) > 0 {
				r.HandleLine(string(line))
			}
			line = line[:0]
			overflow = false
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
