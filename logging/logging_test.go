//go:build !tinygo

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetup_LevelFiltersOutput(t *testing.T) {
	old := L
	t.Cleanup(func() { L = old })

	var buf bytes.Buffer
	c, err := Setup(Options{Level: "warn", Out: &buf})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer c.Close()

	L.Info("hidden")
	L.Warn("shown", "sink", "mqtt")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "sink=mqtt") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestSetup_RejectsUnknownLevel(t *testing.T) {
	old := L
	t.Cleanup(func() { L = old })

	if _, err := Setup(Options{Level: "chatty"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestSetup_MirrorsToRotatedFile(t *testing.T) {
	old := L
	t.Cleanup(func() { L = old })

	path := filepath.Join(t.TempDir(), "gnd.log")
	var buf bytes.Buffer
	c, err := Setup(Options{Level: "debug", File: path, MaxSizeMB: 1, Out: &buf})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	L.Debug("to both")
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "to both") || !strings.Contains(buf.String(), "to both") {
		t.Fatalf("file=%q out=%q", data, buf.String())
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) != Nop {
		t.Fatal("nil should map to Nop")
	}
	var l Logger = L
	if OrNop(l) != l {
		t.Fatal("non-nil logger should pass through")
	}
}

func TestSetDebug_OverridesLevel(t *testing.T) {
	old := L
	t.Cleanup(func() { L = old })

	var buf bytes.Buffer
	if _, err := Setup(Options{Level: "info", Out: &buf}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	L.Debug("before")
	SetDebug(true)
	L.Debug("after")
	SetDebug(false)
	L.Debug("again")

	out := buf.String()
	if strings.Contains(out, "before") || strings.Contains(out, "again") || !strings.Contains(out, "after") {
		t.Fatalf("out = %q", out)
	}
}
