// Package game runs headless sessions back to back: it generates a world per
// session, drives the observer with an Autopilot, and evolves the director every
// few sessions. Output goes to the telemetry package.
package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pthm-cable/rift/config"
	"github.com/pthm-cable/rift/defs"
	"github.com/pthm-cable/rift/director"
	"github.com/pthm-cable/rift/loot"
	"github.com/pthm-cable/rift/session"
	"github.com/pthm-cable/rift/telemetry"
	"github.com/pthm-cable/rift/traits"
	"github.com/pthm-cable/rift/world"
)

// Options configures a run.
type Options struct {
	Seed      string // Base seed; session n plays "<seed>-<n>"
	Size      int    // Grid edge; 0 uses world.default_size
	Sessions  int    // 0 means one
	MaxTicks  int    // Per session; 0 means unlimited
	OutputDir string // Empty disables file output
	LogStats  bool
	Debug     bool

	Config        *config.Config // nil uses config.Cfg()
	Tables        *defs.Tables   // nil loads the embedded tables
	StatsCallback func(telemetry.WindowStats)
}

// Game owns everything that outlives a single session.
type Game struct {
	cfg      *config.Config
	opts     Options
	tables   *defs.Tables
	director *director.Director
	output   *telemetry.OutputManager
	journal  *telemetry.Journal

	played  int
	records []telemetry.SessionRecord
}

// New prepares a run. The output directory, when set, is created and the
// configuration written into it.
func New(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	tables := opts.Tables
	if tables == nil {
		var err error
		if tables, err = defs.Load(); err != nil {
			return nil, fmt.Errorf("loading definition tables: %w", err)
		}
	}
	if opts.Size <= 0 {
		opts.Size = cfg.World.DefaultSize
	}
	if opts.Sessions <= 0 {
		opts.Sessions = 1
	}

	g := &Game{
		cfg:      cfg,
		opts:     opts,
		tables:   tables,
		director: director.New(traits.All(), director.ParamsFromConfig(cfg)),
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("creating output: %w", err)
		}
		g.output = om
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
		if cfg.Telemetry.Journal {
			j, err := telemetry.OpenJournal(om.JournalPath())
			if err != nil {
				om.Close()
				return nil, fmt.Errorf("opening journal: %w", err)
			}
			g.journal = j
		}
	}
	return g, nil
}

// Director returns the run's trait director.
func (g *Game) Director() *director.Director { return g.director }

// Records returns the summaries of the sessions played so far.
func (g *Game) Records() []telemetry.SessionRecord { return g.records }

// Run plays every session, stopping early if ctx is cancelled.
func (g *Game) Run(ctx context.Context) ([]telemetry.SessionRecord, error) {
	slog.Info("starting run",
		"seed", g.opts.Seed,
		"size", g.opts.Size,
		"sessions", g.opts.Sessions,
		"max_ticks", g.opts.MaxTicks,
	)
	for g.played < g.opts.Sessions {
		if err := ctx.Err(); err != nil {
			return g.records, err
		}
		g.RunSession(ctx)
	}
	return g.records, nil
}

// RunSession generates the next world and plays it until the observer dies or
// extracts, MaxTicks pass, or ctx is cancelled. Every director.cycle_sessions
// sessions the director evolves.
func (g *Game) RunSession(ctx context.Context) telemetry.SessionRecord {
	cfg := g.cfg
	id := g.played + 1
	seed := fmt.Sprintf("%s-%d", g.opts.Seed, id)

	w := world.Generate(seed, g.opts.Size, g.tables, g.director, world.Options{
		Params: world.ParamsFromConfig(cfg),
		Debug:  g.opts.Debug,
	})
	if err := g.output.WriteWorld(id, w); err != nil {
		slog.Error("failed to write world", "error", err)
	}

	collector := telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Session.DT)
	deps := session.Deps{
		Tables:    g.tables,
		Director:  g.director,
		Loot:      loot.NewTable(seed, loot.ParamsFromConfig(cfg)),
		Collector: collector,
		Perf:      telemetry.NewPerfCollector(collector.WindowDurationTicks()),
		Journal:   g.journal,
		Output:    g.output,
		Bookmarks: telemetry.NewBookmarkDetector(10, cfg.Session.ObserverHealth),
		LogStats:  g.opts.LogStats,
	}
	opts := session.OptionsFromConfig(cfg)
	opts.ID = id

	s := session.New(w, deps, opts)
	pilot := NewAutopilot(s, cfg.Session.SwingReach)

	for !s.Done() {
		if g.opts.MaxTicks > 0 && s.Ticks() >= g.opts.MaxTicks {
			slog.Info("max ticks reached", "session", id, "tick", s.Ticks())
			break
		}
		if s.Ticks()%1000 == 0 && ctx.Err() != nil {
			break
		}
		pilot.Step(cfg.Session.DT)
		res := s.Tick(cfg.Session.DT)
		if res.Stats != nil && g.opts.StatsCallback != nil {
			g.opts.StatsCallback(*res.Stats)
		}
	}
	s.End(session.Abandoned)

	rec := s.Record()
	g.records = append(g.records, rec)
	g.played++
	if err := g.output.WriteSession(rec); err != nil {
		slog.Error("failed to write session", "error", err)
	}

	if n := cfg.Director.CycleSessions; n > 0 && g.played%n == 0 {
		g.evolve()
	}
	return rec
}

func (g *Game) evolve() {
	report := g.director.EvolveCycle()
	if err := g.output.WriteCycle(report); err != nil {
		slog.Error("failed to write director cycle", "error", err)
	}
	slog.Info("director_cycle",
		"cycle", report.Cycle,
		"sessions", g.played,
	)
}

// Close flushes the journal and output files.
func (g *Game) Close() error {
	jerr := g.journal.Close()
	oerr := g.output.Close()
	if jerr != nil {
		return fmt.Errorf("closing journal: %w", jerr)
	}
	if oerr != nil {
		return fmt.Errorf("closing output: %w", oerr)
	}
	return nil
}
