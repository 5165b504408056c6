package session

import (
	"log/slog"

	"github.com/pthm-cable/rift/ai"
	"github.com/pthm-cable/rift/telemetry"
	"github.com/pthm-cable/rift/world"
)

// flushTelemetry closes the stats window when it is due, or always when force is
// set, and writes the results out.
func (s *Session) flushTelemetry(force bool) *telemetry.WindowStats {
	c := s.deps.Collector
	if c == nil || (!force && !c.ShouldFlush(s.tick)) {
		return nil
	}

	stats := c.Flush(s.tick, s.population())
	stats.Session = s.opts.ID

	var perfStats telemetry.PerfStats
	if s.deps.Perf != nil {
		perfStats = s.deps.Perf.Stats()
	}

	if s.deps.LogStats {
		stats.LogStats()
		if s.deps.Perf != nil {
			perfStats.LogStats()
		}
	}

	if err := s.deps.Output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if s.deps.Perf != nil {
		if err := s.deps.Output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	if s.deps.Bookmarks != nil {
		for _, bm := range s.deps.Bookmarks.Check(stats) {
			if s.deps.LogStats {
				bm.LogBookmark()
			}
			if err := s.deps.Output.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}

	return &stats
}

// population samples the mobs around the observer for a stats window.
func (s *Session) population() telemetry.Population {
	pop := telemetry.Population{
		LiveMobs:       s.world.MobCount(),
		ObserverHealth: s.observer.Health,
	}

	active := s.world.ChunksAround(s.ChunkKey(), s.opts.ActiveRing)
	for _, k := range world.SortedKeys(active) {
		for _, e := range active[k].Mobs() {
			rec, ok := s.memory.Peek(e.ID)
			if !ok || rec.State != ai.Active {
				continue
			}
			pop.ActiveMobs++

			frac := 1.0
			if def, ok := s.deps.Tables.Mob(e.DefinitionID); ok && def.BaseHealth > 0 {
				frac = e.Health / def.BaseHealth
			}
			pop.MobHealth = append(pop.MobHealth, frac)
		}
	}
	return pop
}
