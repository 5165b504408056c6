// Package main provides CMA-ES tuning of combat balance parameters.
package main

import (
	"github.com/pthm-cable/rift/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Mob pressure
			{Name: "move_speed", Path: "ai.move_speed", Min: 0.5, Max: 5.0},
			{Name: "attack_cooldown", Path: "ai.attack_cooldown", Min: 0.5, Max: 5.0},
			{Name: "wake_distance", Path: "ai.wake_distance", Min: 5, Max: 25}, // Must stay below sleep_distance
			// Observer offence
			{Name: "projectile_damage", Path: "combat.projectile_damage", Min: 5, Max: 60},
			{Name: "melee_damage", Path: "combat.melee_damage", Min: 10, Max: 120},
			{Name: "hit_radius", Path: "combat.projectile_hit_radius", Min: 0.5, Max: 3.0},
			// Observer defence
			{Name: "contact_radius", Path: "combat.contact_radius", Min: 0.3, Max: 2.0},
			{Name: "observer_health", Path: "session.observer_health", Min: 50, Max: 300},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes parameter values into cfg and refreshes its derived values.
// Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	c := pv.Clamp(values)

	cfg.AI.MoveSpeed = c[0]
	cfg.AI.AttackCooldown = c[1]
	cfg.AI.WakeDistance = c[2]
	cfg.Combat.ProjectileDamage = c[3]
	cfg.Combat.MeleeDamage = c[4]
	cfg.Combat.ProjectileHitRadius = c[5]
	cfg.Combat.ContactRadius = c[6]
	cfg.Session.ObserverHealth = c[7]

	return cfg.Refresh()
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.AI.MoveSpeed,
		cfg.AI.AttackCooldown,
		cfg.AI.WakeDistance,
		cfg.Combat.ProjectileDamage,
		cfg.Combat.MeleeDamage,
		cfg.Combat.ProjectileHitRadius,
		cfg.Combat.ContactRadius,
		cfg.Session.ObserverHealth,
	}
}
