package session

import (
	"log/slog"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/rift/ai"
	"github.com/pthm-cable/rift/combat"
	"github.com/pthm-cable/rift/projectile"
	"github.com/pthm-cable/rift/telemetry"
	"github.com/pthm-cable/rift/world"
)

// TickResult is what one tick produced.
type TickResult struct {
	Events         []combat.Event
	Actions        map[string]ai.Action    // Decision per engaged mob
	Patterns       []projectile.Pattern    // Attacks mobs started this tick
	Projectiles    []projectile.Projectile // Still in flight after resolution
	Drops          []combat.Drop           // Loot spawned this tick
	ObserverDamage float64
	Deflected      int
	Stats          *telemetry.WindowStats // Set when a stats window closed
}

// Tick advances the session by dt seconds. A finished session does nothing.
func (s *Session) Tick(dt float64) TickResult {
	var res TickResult
	if s.Done() || dt < 0 {
		return res
	}

	perf := s.deps.Perf
	perf.StartTick()
	defer perf.EndTick()

	s.tick++
	s.now += time.Duration(dt * float64(time.Second))

	// Mobs near the observer decide and move
	perf.StartPhase(telemetry.PhaseAI)
	active := s.world.ChunksAround(s.ChunkKey(), s.opts.ActiveRing)
	decided := s.engine.Tick(s.memory, active, s.observer.Position, dt, s.now)
	for k, c := range decided.Updated {
		active[k] = c
	}
	res.Actions = decided.Actions
	res.Patterns = decided.Patterns
	s.spawnMobPatterns(active, decided.Patterns)

	// Patterns become projectiles
	perf.StartPhase(telemetry.PhaseExpand)
	fire := s.expand()
	if perf != nil {
		mobs := 0
		for _, c := range active {
			mobs += len(c.Mobs())
		}
		perf.Load(mobs, len(fire.projectiles))
	}

	// Observer attacks and mob contact
	perf.StartPhase(telemetry.PhaseCombat)
	fresh, landing := s.swings()
	out := s.resolver.Resolve(combat.Input{
		Projectiles:    fire.projectiles,
		Chunks:         active,
		Observer:       s.observer.Position,
		ObserverHealth: s.observer.Health,
		MeleeArcs:      landing,
		Now:            s.now,
		MagicFind:      s.observer.MagicFind,
	})

	// Mob fire against the observer
	perf.StartPhase(telemetry.PhaseHostileFire)
	in := s.resolver.Incoming(combat.IncomingInput{
		Projectiles: out.Surviving,
		Shooters:    fire.shooters,
		Observer:    s.observer.Position,
		Arcs:        fresh,
		Now:         s.now,
	})

	perf.StartPhase(telemetry.PhaseApply)
	s.world.Apply(out.Chunks)
	s.spend(fire.owners, out.Consumed, in.Consumed, in.Deflected)
	s.sweep()
	for _, d := range out.Loot {
		s.store.addDrop(d)
	}

	res.Events = append(out.Events, in.Events...)
	res.Projectiles = in.Surviving
	res.Drops = out.Loot
	res.Deflected = len(in.Deflected)
	res.ObserverDamage = out.ObserverDamage + in.Damage
	s.observe(res.Events)
	if s.deps.Collector != nil {
		for range in.Deflected {
			s.deps.Collector.RecordDeflection()
		}
	}

	perf.StartPhase(telemetry.PhaseTelemetry)
	res.Stats = s.flushTelemetry(false)

	if res.ObserverDamage > 0 {
		s.damageTaken += res.ObserverDamage
		s.observer.Health -= res.ObserverDamage
		if s.observer.Health <= 0 {
			s.observer.Health = 0
			s.die()
		}
	}
	return res
}

// spawnMobPatterns stores the patterns mobs fired, remembering who fired them.
func (s *Session) spawnMobPatterns(chunks map[world.Key]world.Chunk, patterns []projectile.Pattern) {
	if len(patterns) == 0 {
		return
	}
	shooters := make(map[string]combat.Shooter)
	for _, c := range chunks {
		for _, e := range c.Entities {
			if e.Kind == world.Mob {
				shooters[e.ID] = combat.Shooter{DefinitionID: e.DefinitionID, Traits: e.Traits}
			}
		}
	}

	for _, p := range patterns {
		s.store.addHostilePattern(p, shooters[p.Owner])
		s.lifetime.RecordAttack(p.Owner)
		if s.deps.Collector != nil {
			s.deps.Collector.RecordMobAttack()
		}
	}
}

// volley is every live projectile of one tick.
type volley struct {
	projectiles []projectile.Projectile
	shooters    map[string]combat.Shooter // Keyed by owner
	owners      map[string]ecs.Entity     // Projectile id to pattern entity
}

// expand derives the live projectiles of every pattern at the current time,
// skipping those already spent. Expired patterns are removed.
func (s *Session) expand() volley {
	v := volley{
		shooters: make(map[string]combat.Shooter),
		owners:   make(map[string]ecs.Entity),
	}
	var expired []ecs.Entity

	query := s.store.firingFilter.Query()
	for query.Next() {
		entity := query.Entity()
		f := query.Get()

		if projectile.Expired(f.Pattern, s.now, s.opts.Projectile) {
			expired = append(expired, entity)
			continue
		}
		if shooter := s.store.shooterMap.Get(entity); shooter != nil {
			v.shooters[f.Pattern.Owner] = *shooter
		}
		for _, p := range projectile.At(f.Pattern, s.now, s.opts.Projectile) {
			if f.Spent[p.ID] {
				continue
			}
			v.projectiles = append(v.projectiles, p)
			v.owners[p.ID] = entity
		}
	}

	s.store.remove(expired)
	return v
}

// swings returns the fresh arcs and, of those, the ones that have not landed yet.
func (s *Session) swings() (fresh, landing []projectile.Arc) {
	query := s.store.swingFilter.Query()
	for query.Next() {
		sw := query.Get()
		if !sw.Arc.Fresh(s.now, s.opts.Combat.MeleeWindow) {
			continue
		}
		fresh = append(fresh, sw.Arc)
		if !sw.Landed {
			landing = append(landing, sw.Arc)
		}
	}
	return fresh, landing
}

// spend marks consumed and deflected projectiles on their patterns.
func (s *Session) spend(owners map[string]ecs.Entity, ids ...[]string) {
	for _, list := range ids {
		for _, id := range list {
			e, ok := owners[id]
			if !ok {
				continue
			}
			if f := s.store.firingMap.Get(e); f != nil {
				f.Spent[id] = true
			}
		}
	}
}

// sweep lands this tick's swings and removes the ones whose window has closed.
func (s *Session) sweep() {
	var stale []ecs.Entity
	query := s.store.swingFilter.Query()
	for query.Next() {
		sw := query.Get()
		if sw.Arc.Fresh(s.now, s.opts.Combat.MeleeWindow) {
			sw.Landed = true
			continue
		}
		if s.now-sw.Arc.StartedAt >= s.opts.Combat.MeleeWindow {
			stale = append(stale, query.Entity())
		}
	}
	s.store.remove(stale)
}

// observe feeds resolved events to the director, trackers and telemetry.
func (s *Session) observe(events []combat.Event) {
	for _, e := range events {
		if s.deps.Collector != nil {
			s.deps.Collector.RecordEvent(e)
		}
		s.journal(e)

		switch ev := e.(type) {
		case combat.Hit:
			s.lifetime.RecordHit(ev.EntityID, ev.Damage)
		case combat.Kill:
			s.kills++
			s.memory.Clear(ev.EntityID)
			if life, ok := s.lifetime.Lifespan(ev.EntityID, s.now); ok && s.deps.Director != nil {
				s.deps.Director.ReportDeath(ev.Traits, life)
			}
			s.lifetime.Remove(ev.EntityID)
			if gained := s.progress.Add(ev.XP); gained > 0 {
				slog.Info("level_up",
					"session", s.opts.ID,
					"level", s.progress.Level,
					"rank", s.progress.Rank().String(),
				)
			}
		case combat.PlayerDamage:
			s.lifetime.RecordDamageDealt(ev.EntityID, ev.Damage)
			s.killer = ev.Traits
			s.killerID = ev.EntityID
		}
	}
}

func (s *Session) journal(e combat.Event) {
	if s.deps.Journal == nil {
		return
	}
	r, err := telemetry.NewRecord(s.opts.ID, s.tick, s.now, e)
	if err == nil {
		err = s.deps.Journal.Write(r)
	}
	if err != nil {
		slog.Error("failed to journal event", "kind", e.Kind().String(), "error", err)
	}
}

// die ends the session, crediting the traits of whatever dealt the last blow.
func (s *Session) die() {
	if s.deps.Director != nil {
		s.deps.Director.ReportPlayerDeath(s.killer)
	}
	slog.Info("player_death",
		"session", s.opts.ID,
		"tick", s.tick,
		"killer", s.killerID,
		"traits", s.killer.String(),
	)
	s.End(Died)
}
