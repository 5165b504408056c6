package telemetry

import (
	"time"

	"github.com/pthm-cable/rift/traits"
)

// LifetimeStats tracks per-mob statistics over its lifetime.
type LifetimeStats struct {
	DefinitionID string
	SpawnedAt    time.Duration // Sim clock time the mob entered the session
	Traits       traits.Set

	// Taken from the observer
	HitsTaken   int
	DamageTaken float64

	// Dealt to the observer
	Attacks     int
	DamageDealt float64
}

// LifetimeTracker manages per-mob lifetime statistics.
type LifetimeTracker struct {
	stats map[string]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[string]*LifetimeStats),
	}
}

// Register creates lifetime stats for a mob entering the session.
func (lt *LifetimeTracker) Register(entityID, definitionID string, ts traits.Set, spawnedAt time.Duration) {
	lt.stats[entityID] = &LifetimeStats{
		DefinitionID: definitionID,
		SpawnedAt:    spawnedAt,
		Traits:       ts,
	}
}

// Get returns the lifetime stats for a mob, or nil if not found.
func (lt *LifetimeTracker) Get(entityID string) *LifetimeStats {
	return lt.stats[entityID]
}

// Remove removes a mob's stats and returns them.
func (lt *LifetimeTracker) Remove(entityID string) *LifetimeStats {
	stats := lt.stats[entityID]
	delete(lt.stats, entityID)
	return stats
}

// RecordHit adds a hit taken from the observer.
func (lt *LifetimeTracker) RecordHit(entityID string, damage float64) {
	if s := lt.stats[entityID]; s != nil {
		s.HitsTaken++
		s.DamageTaken += damage
	}
}

// RecordAttack increments the attack count.
func (lt *LifetimeTracker) RecordAttack(entityID string) {
	if s := lt.stats[entityID]; s != nil {
		s.Attacks++
	}
}

// RecordDamageDealt adds damage the mob dealt to the observer.
func (lt *LifetimeTracker) RecordDamageDealt(entityID string, damage float64) {
	if s := lt.stats[entityID]; s != nil {
		s.DamageDealt += damage
	}
}

// Lifespan returns the seconds between a mob's spawn and now.
func (lt *LifetimeTracker) Lifespan(entityID string, now time.Duration) (float64, bool) {
	s := lt.stats[entityID]
	if s == nil {
		return 0, false
	}
	return (now - s.SpawnedAt).Seconds(), true
}

// All returns all tracked stats.
func (lt *LifetimeTracker) All() map[string]*LifetimeStats {
	return lt.stats
}

// Count returns the number of tracked mobs.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// TraitCounts returns how many tracked mobs carry each trait.
func (lt *LifetimeTracker) TraitCounts() map[traits.Trait]int {
	out := make(map[traits.Trait]int)
	for _, s := range lt.stats {
		for _, t := range s.Traits.Traits() {
			out[t]++
		}
	}
	return out
}
