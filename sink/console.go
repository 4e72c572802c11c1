// Package sink provides the concrete debug sinks: console writers for the
// host and the MCU, and remote publishers for MQTT and the in-process bus.
package sink

import (
	"io"
	"sync"

	"groundstation-go/debuglog"
)

var _ debuglog.Console = (*Writer)(nil)

// Writer is a line-oriented console over any io.Writer.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	eol string
}

// NewWriter writes "\n"-terminated lines (stdout, files, pipes).
func NewWriter(w io.Writer) *Writer { return &Writer{w: w, eol: "\n"} }

// NewSerialWriter writes "\r\n"-terminated lines like a serial println.
func NewSerialWriter(w io.Writer) *Writer { return &Writer{w: w, eol: "\r\n"} }

// WriteLine emits line and the terminator in a single write.
func (c *Writer) WriteLine(line string) error {
	buf := make([]byte, 0, len(line)+len(c.eol))
	buf = append(buf, line...)
	buf = append(buf, c.eol...)

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.w.Write(buf)
	return err
}

// Close closes the underlying writer when it is closable.
func (c *Writer) Close() error {
	if cl, ok := c.w.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}
