package telemetry

import (
	"github.com/pthm-cable/rift/combat"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int
	dt                  float64

	// Current window tracking
	windowStartTick int

	// Event counters for current window
	projectileHits int
	meleeHits      int
	kills          int
	xp             int
	lootDrops      int
	lootItems      int
	observerHits   int
	observerDamage float64
	patternsFired  int
	mobAttacks     int
	deflections    int
	scans          int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	ticksPerWindow := int(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordEvent counts a resolved combat event.
func (c *Collector) RecordEvent(e combat.Event) {
	switch ev := e.(type) {
	case combat.Hit:
		if ev.Source == combat.FromMelee {
			c.meleeHits++
		} else {
			c.projectileHits++
		}
	case combat.Kill:
		c.kills++
		c.xp += ev.XP
	case combat.LootSpawn:
		c.lootDrops++
		c.lootItems += len(ev.Drop.Items)
	case combat.PlayerDamage:
		c.observerHits++
		c.observerDamage += ev.Damage
	case combat.Action:
		// Skill bookkeeping lives outside the core.
	}
}

// RecordPatternFired records an observer attack.
func (c *Collector) RecordPatternFired() {
	c.patternsFired++
}

// RecordMobAttack records a pattern started by a mob.
func (c *Collector) RecordMobAttack() {
	c.mobAttacks++
}

// RecordDeflection records a hostile projectile knocked away by a swing.
func (c *Collector) RecordDeflection() {
	c.deflections++
}

// RecordScan records a scan request.
func (c *Collector) RecordScan() {
	c.scans++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Population is the mob and observer state sampled at window end.
type Population struct {
	LiveMobs       int
	ActiveMobs     int
	MobHealth      []float64 // Health fraction of each live simulated mob
	ObserverHealth float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int, pop Population) WindowStats {
	hits := c.projectileHits + c.meleeHits
	var killRate, hitsPerAttack float64
	if hits > 0 {
		killRate = float64(c.kills) / float64(hits)
	}
	if c.patternsFired > 0 {
		hitsPerAttack = float64(hits) / float64(c.patternsFired)
	}

	health := Summarize(pop.MobHealth)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		LiveMobs:   pop.LiveMobs,
		ActiveMobs: pop.ActiveMobs,

		ProjectileHits: c.projectileHits,
		MeleeHits:      c.meleeHits,
		Kills:          c.kills,
		XP:             c.xp,
		KillRate:       killRate,
		PatternsFired:  c.patternsFired,
		HitsPerAttack:  hitsPerAttack,

		LootDrops: c.lootDrops,
		LootItems: c.lootItems,

		ObserverHits:   c.observerHits,
		ObserverDamage: c.observerDamage,
		ObserverHealth: pop.ObserverHealth,
		MobAttacks:     c.mobAttacks,
		Deflections:    c.deflections,
		Scans:          c.scans,

		MobHealthMean: health.Mean,
		MobHealthStd:  health.Std,
		MobHealthP10:  health.P10,
		MobHealthP50:  health.P50,
		MobHealthP90:  health.P90,
	}

	// Reset for next window
	*c = Collector{
		windowDurationSec:   c.windowDurationSec,
		windowDurationTicks: c.windowDurationTicks,
		dt:                  c.dt,
		windowStartTick:     currentTick,
	}

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int {
	return c.windowDurationTicks
}
