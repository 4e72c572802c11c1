//go:build !tinygo

package sink

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// OpenSerial opens a host serial device as a console sink.
func OpenSerial(name string, baud int) (*Writer, error) {
	if baud <= 0 {
		baud = 115200
	}
	p, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		ReadTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	return NewSerialWriter(p), nil
}
