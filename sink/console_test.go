package sink

import (
	"bytes"
	"errors"
	"testing"
)

type closeRecorder struct {
	bytes.Buffer
	closed bool
}

func (c *closeRecorder) Close() error { c.closed = true; return nil }

func TestWriter_Terminators(t *testing.T) {
	var host, serial bytes.Buffer
	if err := NewWriter(&host).WriteLine("boot"); err != nil {
		t.Fatal(err)
	}
	if err := NewSerialWriter(&serial).WriteLine("boot"); err != nil {
		t.Fatal(err)
	}
	if host.String() != "boot\n" {
		t.Fatalf("host = %q", host.String())
	}
	if serial.String() != "boot\r\n" {
		t.Fatalf("serial = %q", serial.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("tx fifo full") }

func TestWriter_PropagatesWriteError(t *testing.T) {
	if err := NewWriter(failingWriter{}).WriteLine("x"); err == nil {
		t.Fatal("expected write error")
	}
}

func TestWriter_Close(t *testing.T) {
	rec := &closeRecorder{}
	if err := NewWriter(rec).Close(); err != nil || !rec.closed {
		t.Fatalf("Close: err=%v closed=%v", err, rec.closed)
	}
	var plain bytes.Buffer
	if err := NewWriter(&plain).Close(); err != nil {
		t.Fatalf("Close on non-closer: %v", err)
	}
}
