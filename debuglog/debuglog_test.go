package debuglog

import (
	"errors"
	"sync"
	"testing"

	"groundstation-go/config"
	"groundstation-go/variant"
)

// --- fakes ---

type toggles struct{ serial, remote bool }

func (t *toggles) DebugToSerial() bool        { return t.serial }
func (t *toggles) DebugToRemoteChannel() bool { return t.remote }

type fakeConsole struct {
	mu    sync.Mutex
	lines []string
	err   error
}

func (c *fakeConsole) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.lines = append(c.lines, line)
	return nil
}

type publish struct{ topic, payload string }

type fakeRemote struct {
	mu        sync.Mutex
	available bool
	err       error
	panics    bool
	pubs      []publish
	attempts  int
}

func (r *fakeRemote) Available() bool { return r.available }

func (r *fakeRemote) Publish(topic, payload string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if r.panics {
		panic("client torn down")
	}
	if r.err != nil {
		return r.err
	}
	r.pubs = append(r.pubs, publish{topic, payload})
	return nil
}

// --- tests ---

func TestLog_SerialOnly(t *testing.T) {
	tg := &toggles{serial: true, remote: false}
	con, rem := &fakeConsole{}, &fakeRemote{available: true}
	New(tg, con, rem).Log("x")

	if len(con.lines) != 1 || con.lines[0] != "x" {
		t.Fatalf("console lines = %q", con.lines)
	}
	if rem.attempts != 0 {
		t.Fatalf("remote attempted %d publishes", rem.attempts)
	}
}

func TestLog_RemoteOnly(t *testing.T) {
	tg := &toggles{serial: false, remote: true}
	con, rem := &fakeConsole{}, &fakeRemote{available: true}
	New(tg, con, rem).Log("x")

	if len(con.lines) != 0 {
		t.Fatalf("console written: %q", con.lines)
	}
	want := publish{"/fossasat-1/logging", "gnd:x"}
	if len(rem.pubs) != 1 || rem.pubs[0] != want {
		t.Fatalf("publishes = %+v, want [%+v]", rem.pubs, want)
	}
}

func TestLog_BothAndNeither(t *testing.T) {
	tg := &toggles{serial: true, remote: true}
	con, rem := &fakeConsole{}, &fakeRemote{available: true}
	l := New(tg, con, rem)

	l.Log("both")
	if len(con.lines) != 1 || len(rem.pubs) != 1 {
		t.Fatalf("both: console=%d remote=%d", len(con.lines), len(rem.pubs))
	}

	tg.serial, tg.remote = false, false
	l.Log("neither")
	if len(con.lines) != 1 || rem.attempts != 1 {
		t.Fatalf("neither produced side effects: console=%d attempts=%d", len(con.lines), rem.attempts)
	}
	if s := l.Stats(); s != (Stats{ConsoleLines: 1, RemotePublishes: 1}) {
		t.Fatalf("stats = %+v", s)
	}
}

func TestLog_TogglesReadLive(t *testing.T) {
	reg, err := config.Initialize(variant.Variant3)
	if err != nil {
		t.Fatal(err)
	}
	con := &fakeConsole{}
	l := New(reg, con, nil)

	l.Log("one")
	reg.SetDebugToSerial(false)
	l.Log("two")
	reg.SetDebugToSerial(true)
	l.Log("three")

	if len(con.lines) != 2 || con.lines[0] != "one" || con.lines[1] != "three" {
		t.Fatalf("console lines = %q", con.lines)
	}
}

func TestLog_RemoteUnavailableIsAbsorbed(t *testing.T) {
	tg := &toggles{serial: true, remote: true}
	con, rem := &fakeConsole{}, &fakeRemote{available: false}
	l := New(tg, con, rem)

	l.Log("still here")

	if rem.attempts != 0 {
		t.Fatal("publish attempted on unavailable sink")
	}
	if len(con.lines) != 1 {
		t.Fatal("console must still receive the line")
	}
	if s := l.Stats(); s.RemoteDrops != 1 || s.RemotePublishes != 0 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestLog_RemoteErrorsAndPanicsAreAbsorbed(t *testing.T) {
	tg := &toggles{serial: true, remote: true}
	con := &fakeConsole{}

	failing := &fakeRemote{available: true, err: errors.New("broker gone")}
	New(tg, con, failing).Log("a")

	panicking := &fakeRemote{available: true, panics: true}
	l := New(tg, con, panicking)
	l.Log("b")

	if len(con.lines) != 2 {
		t.Fatalf("console lines = %q", con.lines)
	}
	if l.Stats().RemoteDrops != 1 {
		t.Fatalf("stats = %+v", l.Stats())
	}
}

func TestLog_NilSinks(t *testing.T) {
	tg := &toggles{serial: true, remote: true}
	l := New(tg, nil, nil)
	l.Log("nowhere")
	if s := l.Stats(); s.ConsoleDrops != 1 || s.RemoteDrops != 1 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestLog_ConsoleFailureDoesNotBlockRemote(t *testing.T) {
	tg := &toggles{serial: true, remote: true}
	con := &fakeConsole{err: errors.New("uart busy")}
	rem := &fakeRemote{available: true}
	l := New(tg, con, rem)

	l.Log("y")
	if len(rem.pubs) != 1 {
		t.Fatal("remote should still publish")
	}
	if l.Stats().ConsoleDrops != 1 {
		t.Fatalf("stats = %+v", l.Stats())
	}
}

func TestLogf_AndTopicOverride(t *testing.T) {
	tg := &toggles{remote: true}
	rem := &fakeRemote{available: true}
	New(tg, nil, rem, WithTopic("/gs/debug")).Logf("freq=%.1f", 434.0)

	if len(rem.pubs) != 1 || rem.pubs[0] != (publish{"/gs/debug", "gnd:freq=434.0"}) {
		t.Fatalf("publishes = %+v", rem.pubs)
	}
}
