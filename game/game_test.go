package game

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/rift/config"
	"github.com/pthm-cable/rift/defs"
	"github.com/pthm-cable/rift/telemetry"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	cfg := config.Defaults()
	cfg.Director.CycleSessions = 2
	cfg.Telemetry.StatsWindow = 1
	return Options{
		Seed:      "run",
		Size:      6,
		Sessions:  2,
		MaxTicks:  300,
		OutputDir: t.TempDir(),
		Config:    cfg,
		Tables:    defs.MustLoad(),
	}
}

func lines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestRunWritesOutput(t *testing.T) {
	opts := testOptions(t)
	var windows int
	opts.StatsCallback = func(telemetry.WindowStats) { windows++ }

	g, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	records, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	for i, r := range records {
		if r.Session != i+1 || r.Outcome == "" || r.Ticks > 300 {
			t.Errorf("record %d = %+v", i, r)
		}
	}
	if records[0].Seed == records[1].Seed {
		t.Error("sessions shared a seed")
	}

	dir := opts.OutputDir
	if got := lines(t, filepath.Join(dir, "sessions.csv")); len(got) != 3 {
		t.Errorf("sessions.csv has %d lines, want header + 2", len(got))
	}
	if got := lines(t, filepath.Join(dir, "director.csv")); len(got) != 6 {
		t.Errorf("director.csv has %d lines, want header + 5 traits", len(got))
	}
	for _, name := range []string{"config.yaml", "worlds/session_001.json", "worlds/session_002.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := telemetry.ReadJournal(filepath.Join(dir, "events.jsonl.zst")); err != nil {
		t.Errorf("journal: %v", err)
	}
	if g.Director().Cycle() != 1 {
		t.Errorf("director cycle = %d, want 1", g.Director().Cycle())
	}
	// Every closed window is reported; each session also flushes its last partial one.
	if got := lines(t, filepath.Join(dir, "telemetry.csv")); len(got) != 1+windows+2 {
		t.Errorf("telemetry.csv has %d lines, want %d", len(got), 1+windows+2)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	opts := testOptions(t)
	opts.OutputDir = ""
	g, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	records, err := g.Run(ctx)
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(records) != 0 {
		t.Errorf("played %d sessions after cancel", len(records))
	}
}
