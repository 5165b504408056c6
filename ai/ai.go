// Package ai runs the per-tick mob decision engine.
//
// Each tick evaluates every live mob in the supplied chunks against the observer:
// a hysteresis state machine decides whether the mob is engaged, and a small decision
// table picks one behaviour primitive. Attacks are emitted as firing patterns; the
// combat package decides what they hit.
package ai

import (
	"strconv"
	"time"

	"github.com/pthm-cable/rift/config"
	"github.com/pthm-cable/rift/defs"
	"github.com/pthm-cable/rift/geom"
	"github.com/pthm-cable/rift/projectile"
	"github.com/pthm-cable/rift/traits"
	"github.com/pthm-cable/rift/world"
)

// Action is a behaviour primitive.
type Action uint8

const (
	Idle Action = iota
	Approach
	Flee
	AttackMelee
	AttackRanged
)

var actionNames = [...]string{"IDLE", "APPROACH", "FLEE", "ATTACK_MELEE", "ATTACK_RANGED"}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "UNKNOWN"
}

// Params holds the decision engine constants.
type Params struct {
	WakeDistance   float64
	SleepDistance  float64
	MeleeRange     float64
	RangedMin      float64
	RangedMax      float64
	MoveSpeed      float64 // Units per second
	AttackCooldown time.Duration
}

// DefaultParams returns the stock engine constants.
func DefaultParams() Params {
	return Params{
		WakeDistance:   15,
		SleepDistance:  30,
		MeleeRange:     2,
		RangedMin:      4,
		RangedMax:      8,
		MoveSpeed:      2.0,
		AttackCooldown: 2 * time.Second,
	}
}

// ParamsFromConfig extracts engine constants from the loaded configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		WakeDistance:   cfg.AI.WakeDistance,
		SleepDistance:  cfg.AI.SleepDistance,
		MeleeRange:     cfg.AI.MeleeRange,
		RangedMin:      cfg.AI.RangedMin,
		RangedMax:      cfg.AI.RangedMax,
		MoveSpeed:      cfg.AI.MoveSpeed,
		AttackCooldown: cfg.Derived.AttackCooldown,
	}
}

// Context is what a mob knows when deciding.
type Context struct {
	Distance      float64
	HealthPercent float64
	Observer      geom.Vec
	NoiseLevel    float64 // Placeholder environment signals, constant for now
	LightLevel    float64
	InTerritory   bool
}

// Decide picks the behaviour for an engaged mob.
func (p Params) Decide(def *defs.MobDef, ctx Context) Action {
	if ctx.Distance < p.MeleeRange {
		return AttackMelee
	}
	if def != nil && def.Can(defs.CapRanged) {
		switch {
		case ctx.Distance > p.RangedMin && ctx.Distance < p.RangedMax:
			return AttackRanged
		case ctx.Distance <= p.RangedMin:
			return Flee
		}
	}
	return Approach
}

// Engine evaluates mobs against the observer.
type Engine struct {
	Params Params
	Tables *defs.Tables
	NewID  func() string // Pattern ids; defaults to a per-engine counter
	seq    uint64
}

// NewEngine creates an engine over the given definition tables.
func NewEngine(params Params, tables *defs.Tables) *Engine {
	return &Engine{Params: params, Tables: tables}
}

// TickResult is the output of one engine tick.
type TickResult struct {
	Updated  map[world.Key]world.Chunk // Chunks with at least one engaged mob
	Patterns []projectile.Pattern      // Attacks started this tick
	Actions  map[string]Action         // Decision per engaged mob id
}

func (e *Engine) patternID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	e.seq++
	return "mob-" + strconv.FormatUint(e.seq, 10)
}

// Tick advances every live mob in chunks by dt seconds at sim time now. Inputs are
// not modified; chunks containing engaged mobs are returned as fresh copies.
func (e *Engine) Tick(mem *Memory, chunks map[world.Key]world.Chunk, observer geom.Vec, dt float64, now time.Duration) TickResult {
	res := TickResult{
		Updated: make(map[world.Key]world.Chunk),
		Actions: make(map[string]Action),
	}

	for _, k := range world.SortedKeys(chunks) {
		chunk := chunks[k]
		modified := false
		var entities []world.Entity

		for i, ent := range chunk.Entities {
			if !ent.Alive() {
				continue
			}
			moved, engaged := e.step(mem, ent, observer, dt, now, &res)
			if !engaged {
				continue
			}
			if !modified {
				entities = append([]world.Entity(nil), chunk.Entities...)
				modified = true
			}
			entities[i] = moved
		}

		if modified {
			chunk.Entities = entities
			res.Updated[k] = chunk
		}
	}
	return res
}

// step evaluates one live mob and reports whether it is engaged.
func (e *Engine) step(mem *Memory, ent world.Entity, observer geom.Vec, dt float64, now time.Duration, res *TickResult) (world.Entity, bool) {
	rec := mem.Get(ent.ID)
	effects := traits.GetEffects(ent.Traits)
	dist := geom.Distance(ent.Position, observer)

	switch rec.State {
	case Dormant:
		if dist < e.Params.WakeDistance*effects.WakeMultiplier {
			rec.State = Active
		}
	case Active:
		if dist > e.Params.SleepDistance {
			rec.State = Dormant
		}
	}
	if rec.State != Active {
		return ent, false
	}

	var def *defs.MobDef
	if e.Tables != nil {
		def, _ = e.Tables.Mob(ent.DefinitionID)
	}

	health := 1.0
	if def != nil && def.BaseHealth > 0 {
		health = ent.Health / def.BaseHealth
	}
	ctx := Context{
		Distance:      dist,
		HealthPercent: health,
		Observer:      observer,
		NoiseLevel:    50,
		LightLevel:    1.0,
		InTerritory:   true,
	}
	action := e.Params.Decide(def, ctx)
	res.Actions[ent.ID] = action

	bearing := geom.Bearing(ent.Position, observer)
	step := e.Params.MoveSpeed * effects.SpeedMultiplier * dt

	if action == AttackMelee || action == AttackRanged {
		if !rec.Attacked || now-rec.LastAttack > e.Params.AttackCooldown {
			rec.Attacked = true
			rec.LastAttack = now
			kind := projectile.Melee
			if action == AttackRanged {
				kind = projectile.Single
			}
			res.Patterns = append(res.Patterns, projectile.Pattern{
				ID:        e.patternID(),
				Kind:      kind,
				Origin:    ent.Position,
				BaseAngle: bearing,
				StartedAt: now,
				Owner:     ent.ID,
			})
		}
	}

	switch action {
	case Approach:
		ent.Position = geom.Polar(ent.Position, bearing, step)
	case Flee:
		ent.Position = geom.Polar(ent.Position, bearing, -step)
	}
	return ent, true
}
