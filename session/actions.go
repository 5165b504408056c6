package session

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/rift/combat"
	"github.com/pthm-cable/rift/geom"
	"github.com/pthm-cable/rift/loot"
	"github.com/pthm-cable/rift/projectile"
	"github.com/pthm-cable/rift/world"
)

// Fire starts an observer firing pattern toward angle and returns its id.
// Melee is not a firing pattern for the observer; use Swing.
func (s *Session) Fire(kind projectile.Kind, angle float64) string {
	if s.Done() || kind == projectile.Melee {
		return ""
	}
	p := projectile.Pattern{
		ID:        s.opts.NewID(),
		Kind:      kind,
		Origin:    s.observer.Position,
		BaseAngle: angle,
		StartedAt: s.now,
		Owner:     projectile.ObserverOwner,
	}
	s.store.addPattern(p)
	if s.deps.Collector != nil {
		s.deps.Collector.RecordPatternFired()
	}
	return p.ID
}

// Swing starts a melee arc toward angle.
func (s *Session) Swing(angle, reach float64) {
	if s.Done() {
		return
	}
	s.store.addSwing(projectile.Arc{
		Origin:    s.observer.Position,
		Angle:     angle,
		Reach:     reach,
		StartedAt: s.now,
	})
	if s.deps.Collector != nil {
		s.deps.Collector.RecordPatternFired()
	}
}

// Move shifts the observer, keeping it inside the world bounds.
func (s *Session) Move(dx, dy float64) {
	if s.Done() {
		return
	}
	maxX := float64(s.world.Width) * s.world.ChunkSize
	maxY := float64(s.world.Height) * s.world.ChunkSize
	s.observer.Position = geom.Vec{
		X: geom.Clamp(s.observer.Position.X+dx, 0, maxX),
		Y: geom.Clamp(s.observer.Position.Y+dy, 0, maxY),
	}
}

// Scan applies one scan of chunk k with the observer's efficiency.
func (s *Session) Scan(k world.Key) world.RevealLevel {
	if s.deps.Collector != nil {
		s.deps.Collector.RecordScan()
	}
	return s.fog.Scan(s.world, k, s.observer.ScanEfficiency)
}

// View returns what the observer is allowed to see of chunk k.
func (s *Session) View(k world.Key) world.ChunkView {
	return s.fog.View(s.world, k)
}

// PickupLoot collects every drop within the pickup radius.
func (s *Session) PickupLoot() []loot.Item {
	var drops []combat.Drop
	entities := make(map[string]ecs.Entity)

	query := s.store.lootFilter.Query()
	for query.Next() {
		d := query.Get().Drop
		drops = append(drops, d)
		entities[d.ID] = query.Entity()
	}

	picked, remaining := combat.Pickup(s.observer.Position, drops, s.opts.Combat.PickupRadius)
	if len(picked) == 0 {
		return nil
	}

	for _, d := range remaining {
		delete(entities, d.ID)
	}
	s.store.remove(slices.Collect(maps.Values(entities)))
	s.inventory = append(s.inventory, picked...)
	return picked
}

// Interact opens a container or harvests a resource node within reach. The entity
// is removed from its chunk. It reports false when nothing usable is in reach.
func (s *Session) Interact(entityID string) ([]loot.Item, bool) {
	if s.Done() || s.deps.Loot == nil {
		return nil, false
	}

	for k, c := range s.world.ChunksAround(s.ChunkKey(), 1) {
		i := c.Find(entityID)
		if i < 0 {
			continue
		}
		e := c.Entities[i]
		if geom.Distance(e.Position, s.observer.Position) > s.opts.InteractRadius {
			return nil, false
		}

		var items []loot.Item
		switch e.Kind {
		case world.Container:
			items = s.deps.Loot.Chest(e.Rank, s.observer.MagicFind)
		case world.Resource:
			def, ok := s.deps.Tables.Resource(e.DefinitionID)
			if !ok {
				return nil, false
			}
			items = s.deps.Loot.Resource(def, s.opts.ResourceYield)
		default:
			return nil, false
		}

		s.world.Apply(map[world.Key]world.Chunk{k: c.Without(entityID)})
		s.inventory = append(s.inventory, items...)
		slog.Debug("interact", "entity", entityID, "kind", e.Kind.String(), "items", len(items))
		return items, true
	}
	return nil, false
}

// Extract ends the session if the observer stands in an extraction chunk.
func (s *Session) Extract() bool {
	if s.Done() {
		return false
	}
	c, ok := s.world.Chunk(s.ChunkKey())
	if !ok || !c.Extraction {
		return false
	}
	s.End(Extracted)
	return true
}

// End finishes the session. Mobs still alive are reported to the director as
// survivors, the last partial stats window is flushed and AI memory is dropped.
// Ending twice does nothing.
func (s *Session) End(outcome Outcome) {
	if s.Done() {
		return
	}
	if outcome == Running {
		outcome = Abandoned
	}
	s.outcome = outcome

	if s.deps.Director != nil {
		alive := s.lifetime.All()
		for _, id := range slices.Sorted(maps.Keys(alive)) {
			s.deps.Director.ReportSurvival(alive[id].Traits)
		}
	}

	// The closing window samples the mobs still awake, so memory goes last.
	s.flushTelemetry(true)
	s.memory.Reset()

	slog.Info("session_end",
		"session", s.opts.ID,
		"outcome", string(outcome),
		"ticks", s.tick,
		"sim_time", s.now.Seconds(),
		"kills", s.kills,
		"xp", s.progress.XP,
		"items", len(s.inventory),
	)
}
