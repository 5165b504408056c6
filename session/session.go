// Package session hosts one observer's run through a generated world.
//
// A Session owns the sim clock, the observer, the AI memory and an ECS store of
// everything ephemeral: firing patterns, melee swings and loot drops. Each Tick
// runs the AI engine over the chunks around the observer, expands live patterns
// into projectiles, resolves combat and applies the returned deltas to the world.
// Sessions are single-threaded.
package session

import (
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pthm-cable/rift/ai"
	"github.com/pthm-cable/rift/combat"
	"github.com/pthm-cable/rift/config"
	"github.com/pthm-cable/rift/defs"
	"github.com/pthm-cable/rift/director"
	"github.com/pthm-cable/rift/geom"
	"github.com/pthm-cable/rift/loot"
	"github.com/pthm-cable/rift/progression"
	"github.com/pthm-cable/rift/projectile"
	"github.com/pthm-cable/rift/telemetry"
	"github.com/pthm-cable/rift/traits"
	"github.com/pthm-cable/rift/world"
)

// Outcome is how a session ended.
type Outcome string

const (
	Running   Outcome = ""
	Died      Outcome = "died"
	Extracted Outcome = "extracted"
	Abandoned Outcome = "abandoned"
)

// Observer is the player snapshot the core simulates against.
type Observer struct {
	Position       geom.Vec
	Health         float64
	MaxHealth      float64
	ScanEfficiency float64
	MagicFind      float64
}

// Deps are the collaborators a session reports to. Only Tables is required.
type Deps struct {
	Tables    *defs.Tables
	Director  *director.Director
	Loot      *loot.Table
	Collector *telemetry.Collector
	Perf      *telemetry.PerfCollector
	Journal   *telemetry.Journal
	Output    *telemetry.OutputManager
	Bookmarks *telemetry.BookmarkDetector
	LogStats  bool
}

// Options holds session tuning.
type Options struct {
	ID             int // Session number used in telemetry
	AI             ai.Params
	Combat         combat.Params
	Projectile     projectile.Params
	Scan           world.Thresholds
	ActiveRing     int     // Chunks within this ring of the observer's chunk are simulated
	InteractRadius float64 // Reach for containers and resource nodes
	ResourceYield  float64
	Observer       Observer
	Spawn          *geom.Vec     // Observer start; nil lands in the middle chunk
	NewID          func() string // Observer pattern and drop ids; defaults to ULIDs
}

// DefaultOptions returns stock options with a full-health observer.
func DefaultOptions() Options {
	return Options{
		AI:             ai.DefaultParams(),
		Combat:         combat.DefaultParams(),
		Projectile:     projectile.DefaultParams(),
		Scan:           world.DefaultThresholds(),
		ActiveRing:     1,
		InteractRadius: 3.0,
		ResourceYield:  1.0,
		Observer: Observer{
			Health:         100,
			MaxHealth:      100,
			ScanEfficiency: 2.0,
			MagicFind:      1.0,
		},
	}
}

// OptionsFromConfig builds options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	s := cfg.Session
	return Options{
		AI:             ai.ParamsFromConfig(cfg),
		Combat:         combat.ParamsFromConfig(cfg),
		Projectile:     projectile.ParamsFromConfig(cfg),
		Scan:           world.ThresholdsFromConfig(cfg),
		ActiveRing:     s.ActiveRing,
		InteractRadius: s.InteractRadius,
		ResourceYield:  s.ResourceYield,
		Observer: Observer{
			Health:         s.ObserverHealth,
			MaxHealth:      s.ObserverHealth,
			ScanEfficiency: s.ScanEfficiency,
			MagicFind:      cfg.Loot.MagicFind,
		},
	}
}

// Session is one observer's run through a world.
type Session struct {
	world    *world.World
	deps     Deps
	opts     Options
	store    *store
	memory   *ai.Memory
	engine   *ai.Engine
	resolver *combat.Resolver
	fog      *world.Fog
	progress *progression.Tracker
	lifetime *telemetry.LifetimeTracker

	observer  Observer
	now       time.Duration
	tick      int
	outcome   Outcome
	inventory []loot.Item

	spawned     int
	kills       int
	damageTaken float64
	killer      traits.Set
	killerID    string
}

// New starts a session in w. Every live mob is reported to the director as a spawn
// and tracked from time zero. An observer without a position starts at the centre
// of the middle chunk.
func New(w *world.World, deps Deps, opts Options) *Session {
	if opts.NewID == nil {
		opts.NewID = func() string { return ulid.Make().String() }
	}

	var lootTable combat.LootTable
	if deps.Loot != nil {
		lootTable = deps.Loot
	}

	s := &Session{
		world:  w,
		deps:   deps,
		opts:   opts,
		store:  newStore(),
		memory: ai.NewMemory(),
		engine: ai.NewEngine(opts.AI, deps.Tables),
		resolver: &combat.Resolver{
			Params:      opts.Combat,
			Projectile:  opts.Projectile,
			Tables:      deps.Tables,
			Loot:        lootTable,
			Progression: progression.Calculator{},
			NewID:       opts.NewID,
		},
		fog:      world.NewFog(opts.Scan),
		progress: progression.NewTracker(),
		lifetime: telemetry.NewLifetimeTracker(),
		observer: opts.Observer,
	}

	switch {
	case opts.Spawn != nil:
		s.observer.Position = *opts.Spawn
	case w.Width > 0:
		s.observer.Position = w.Center(world.Key{X: w.Width / 2, Y: w.Height / 2})
	}

	for _, k := range w.Keys() {
		c := w.Chunks[k]
		for _, e := range c.Mobs() {
			s.lifetime.Register(e.ID, e.DefinitionID, e.Traits, 0)
			if deps.Director != nil {
				deps.Director.ReportSpawn(e.Traits)
			}
			s.spawned++
		}
	}

	// The observer always knows where it landed.
	s.fog.Reveal(s.ChunkKey(), world.Basic)

	slog.Info("session_start",
		"session", opts.ID,
		"seed", w.Seed,
		"chunks", len(w.Chunks),
		"mobs", s.spawned,
		"mutations", w.Mutations.String(),
	)
	return s
}

// Observer returns the current observer snapshot.
func (s *Session) Observer() Observer { return s.observer }

// Now returns the sim clock.
func (s *Session) Now() time.Duration { return s.now }

// Ticks returns how many ticks have run.
func (s *Session) Ticks() int { return s.tick }

// Outcome returns how the session ended, or Running.
func (s *Session) Outcome() Outcome { return s.outcome }

// Done reports whether the session has ended.
func (s *Session) Done() bool { return s.outcome != Running }

// World returns the world the session mutates.
func (s *Session) World() *world.World { return s.world }

// Fog returns the observer's reveal map.
func (s *Session) Fog() *world.Fog { return s.fog }

// Memory returns the AI memory store.
func (s *Session) Memory() *ai.Memory { return s.memory }

// Inventory returns the items collected so far.
func (s *Session) Inventory() []loot.Item { return s.inventory }

// Progress returns the observer's experience tracker.
func (s *Session) Progress() *progression.Tracker { return s.progress }

// Lifetimes returns the per-mob lifetime tracker.
func (s *Session) Lifetimes() *telemetry.LifetimeTracker { return s.lifetime }

// ChunkKey returns the key of the chunk the observer stands in.
func (s *Session) ChunkKey() world.Key {
	return world.KeyAt(s.observer.Position, s.world.ChunkSize)
}

// Drops returns the loot lying in the world.
func (s *Session) Drops() []combat.Drop {
	var out []combat.Drop
	q := s.store.lootFilter.Query()
	for q.Next() {
		out = append(out, q.Get().Drop)
	}
	return out
}

// Patterns returns the live firing patterns.
func (s *Session) Patterns() []projectile.Pattern {
	var out []projectile.Pattern
	q := s.store.firingFilter.Query()
	for q.Next() {
		out = append(out, q.Get().Pattern)
	}
	return out
}

// Record summarises the session for sessions.csv.
func (s *Session) Record() telemetry.SessionRecord {
	revealed := 0
	for _, k := range s.world.Keys() {
		if s.fog.Level(k) > world.Unknown {
			revealed++
		}
	}
	return telemetry.SessionRecord{
		Session:        s.opts.ID,
		Seed:           s.world.Seed,
		Outcome:        string(s.outcome),
		Ticks:          s.tick,
		SimTimeSec:     s.now.Seconds(),
		Mutations:      s.world.Mutations.String(),
		MobsSpawned:    s.spawned,
		Kills:          s.kills,
		XP:             s.progress.XP,
		Level:          s.progress.Level,
		ItemsLooted:    len(s.inventory),
		DamageTaken:    s.damageTaken,
		ChunksRevealed: revealed,
		Killer:         s.killer.String(),
	}
}
