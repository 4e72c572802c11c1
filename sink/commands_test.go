package sink

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"groundstation-go/bus"
)

func newRouterHarness(t *testing.T) (*Router, *bus.Subscription) {
	t.Helper()
	b := bus.NewBus(8)
	sub := b.NewConnection("watch").Subscribe(bus.T("#"))
	r := NewRouter(b.NewConnection("commands"), nil,
		bus.T("config", "debug"), bus.T("radio", "tune"), bus.T("radio", "restore"))
	return r, sub
}

func nextMessage(t *testing.T, sub *bus.Subscription) *bus.Message {
	t.Helper()
	select {
	case m := <-sub.Channel():
		return m
	case <-time.After(time.Second):
		t.Fatal("no message")
		return nil
	}
}

func TestRouter_Paths(t *testing.T) {
	r, _ := newRouterHarness(t)
	got := r.Paths()
	sort.Strings(got)
	if strings.Join(got, ",") != "config/debug,radio/restore,radio/tune" {
		t.Fatalf("paths = %v", got)
	}
}

func TestRouter_RouteKnownAndUnknown(t *testing.T) {
	r, sub := newRouterHarness(t)

	if !r.Route("/radio/tune", []byte(`{"frequency_mhz":436.7}`)) {
		t.Fatal("radio/tune should be accepted")
	}
	m := nextMessage(t, sub)
	if m.Topic.String() != "radio/tune" || string(m.Payload.([]byte)) != `{"frequency_mhz":436.7}` {
		t.Fatalf("got %s %v", m.Topic, m.Payload)
	}

	if r.Route("radio/reboot", nil) {
		t.Fatal("unknown path must be dropped")
	}
	select {
	case m := <-sub.Channel():
		t.Fatalf("unexpected %s", m.Topic)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestRouter_HandleLineEmptyPayloadIsNil(t *testing.T) {
	r, sub := newRouterHarness(t)
	if !r.HandleLine("  radio/restore  ") {
		t.Fatal("restore should be accepted")
	}
	if m := nextMessage(t, sub); m.Payload != nil {
		t.Fatalf("payload = %v", m.Payload)
	}
}

// chunkReceiver hands out its data a few bytes at a time, then fails.
type chunkReceiver struct {
	data []byte
	err  error
}

func (c *chunkReceiver) RecvSomeContext(_ context.Context, buf []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, c.err
	}
	n := copy(buf[:min(len(buf), 5)], c.data)
	c.data = c.data[n:]
	return n, nil
}

func TestRouter_ReadLines(t *testing.T) {
	r, sub := newRouterHarness(t)
	long := "radio/tune " + strings.Repeat("x", maxCommandLine)
	rx := &chunkReceiver{
		data: []byte("config/debug {\"remote\":true}\r\n\n" + long + "\nradio/restore\r"),
		err:  io.ErrUnexpectedEOF,
	}

	if err := r.ReadLines(context.Background(), rx); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v", err)
	}
	if m := nextMessage(t, sub); m.Topic.String() != "config/debug" || string(m.Payload.([]byte)) != `{"remote":true}` {
		t.Fatalf("first = %s %v", m.Topic, m.Payload)
	}
	if m := nextMessage(t, sub); m.Topic.String() != "radio/restore" {
		t.Fatalf("second = %s, overlong line should have been dropped", m.Topic)
	}
}

func TestRouter_ReadLinesStopsOnCancel(t *testing.T) {
	r, _ := newRouterHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.ReadLines(ctx, ReaderReceiver{R: strings.NewReader("")}); err != nil {
		t.Fatalf("cancelled read should end quietly: %v", err)
	}
}
