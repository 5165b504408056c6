// Package combat resolves one tick of damage between the observer and mobs.
//
// Resolution runs in three fixed passes: observer projectiles against mobs, fresh
// melee arcs against mobs, then hostile mobs in contact with the observer. A mob
// killed in an earlier pass is skipped by later ones. Resolve never modifies its
// input; it returns new chunk and projectile collections.
package combat

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pthm-cable/rift/config"
	"github.com/pthm-cable/rift/defs"
	"github.com/pthm-cable/rift/geom"
	"github.com/pthm-cable/rift/loot"
	"github.com/pthm-cable/rift/projectile"
	"github.com/pthm-cable/rift/traits"
	"github.com/pthm-cable/rift/world"
)

// LootTable rolls drops for a killed mob.
type LootTable interface {
	GenerateLoot(def *defs.MobDef, magicFind float64) []loot.Item
}

// Progression values kills.
type Progression interface {
	KillXP(rank defs.Rank, rarity defs.Rarity, participants int) int
}

// Params holds the resolution constants.
type Params struct {
	HitRadius            float64
	ProjectileDamage     float64
	MeleeDamage          float64
	MeleeWindow          time.Duration
	MeleeHalfAngle       float64 // Radians either side of the swing direction
	ContactRadius        float64
	DefaultContactDamage float64 // Used when a mob's definition is unknown
	DeathBlastRadius     float64
	PickupRadius         float64
}

// DefaultParams returns the stock resolution constants.
func DefaultParams() Params {
	return Params{
		HitRadius:            1.5,
		ProjectileDamage:     25,
		MeleeDamage:          50,
		MeleeWindow:          200 * time.Millisecond,
		MeleeHalfAngle:       0.75,
		ContactRadius:        1.0,
		DefaultContactDamage: 10,
		DeathBlastRadius:     3.0,
		PickupRadius:         2.0,
	}
}

// ParamsFromConfig extracts resolution constants from the loaded configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	c := cfg.Combat
	return Params{
		HitRadius:            c.ProjectileHitRadius,
		ProjectileDamage:     c.ProjectileDamage,
		MeleeDamage:          c.MeleeDamage,
		MeleeWindow:          cfg.Derived.MeleeWindow,
		MeleeHalfAngle:       c.MeleeHalfAngle,
		ContactRadius:        c.ContactRadius,
		DefaultContactDamage: c.DefaultContactDamage,
		DeathBlastRadius:     c.DeathBlastRadius,
		PickupRadius:         c.PickupRadius,
	}
}

// Resolver holds the collaborators combat needs. It keeps no state between ticks.
type Resolver struct {
	Params      Params
	Projectile  projectile.Params // Deflection geometry for hostile fire
	Tables      *defs.Tables
	Loot        LootTable   // Optional; nil means kills drop nothing
	Progression Progression // Optional; nil means kills are worth 0 XP
	NewID       func() string
}

// Input is the state one tick resolves against.
type Input struct {
	Projectiles    []projectile.Projectile
	Chunks         map[world.Key]world.Chunk
	Observer       geom.Vec
	ObserverHealth float64
	MeleeArcs      []projectile.Arc
	Now            time.Duration
	MagicFind      float64
}

// Result is the outcome of one tick.
type Result struct {
	Events         []Event
	Chunks         map[world.Key]world.Chunk // Every input chunk, with hits applied and dead mobs removed
	Surviving      []projectile.Projectile
	Consumed       []string // Ids of projectiles that hit something
	ObserverDamage float64
	Loot           []Drop
}

// target addresses a mob inside the working copy of the chunks.
type target struct {
	key world.Key
	ent *world.Entity
}

type pass struct {
	r      *Resolver
	in     Input
	res    *Result
	work   map[world.Key][]world.Entity
	mobs   []target
	killed map[string]bool
}

func (r *Resolver) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return ulid.Make().String()
}

func (r *Resolver) def(id string) *defs.MobDef {
	if r.Tables == nil {
		return nil
	}
	d, _ := r.Tables.Mob(id)
	return d
}

// Resolve runs the three passes in order.
func (r *Resolver) Resolve(in Input) Result {
	if in.MagicFind == 0 {
		in.MagicFind = 1.0
	}
	res := Result{Chunks: make(map[world.Key]world.Chunk, len(in.Chunks))}
	p := &pass{
		r:      r,
		in:     in,
		res:    &res,
		work:   make(map[world.Key][]world.Entity, len(in.Chunks)),
		killed: make(map[string]bool),
	}

	for _, k := range world.SortedKeys(in.Chunks) {
		ents := append([]world.Entity(nil), in.Chunks[k].Entities...)
		p.work[k] = ents
		for i := range ents {
			if ents[i].Alive() {
				p.mobs = append(p.mobs, target{key: k, ent: &ents[i]})
			}
		}
	}

	p.projectiles()
	p.melee()
	p.contact()

	for k, c := range in.Chunks {
		ents := p.work[k]
		if len(p.killed) > 0 {
			kept := ents[:0]
			for _, e := range ents {
				if !p.killed[e.ID] {
					kept = append(kept, e)
				}
			}
			ents = kept
		}
		c.Entities = ents
		res.Chunks[k] = c
	}
	return res
}

// projectiles is pass 1. Each observer projectile hits at most one mob; hostile
// projectiles pass through untouched.
func (p *pass) projectiles() {
	for _, pr := range p.in.Projectiles {
		if pr.Hostile() {
			p.res.Surviving = append(p.res.Surviving, pr)
			continue
		}
		consumed := false
		for _, t := range p.mobs {
			if t.ent.Health <= 0 {
				continue
			}
			if geom.Distance(pr.Position, t.ent.Position) >= p.r.Params.HitRadius {
				continue
			}
			p.damage(t, p.r.Params.ProjectileDamage, FromProjectile, rangedTags)
			consumed = true
			break
		}
		if consumed {
			p.res.Consumed = append(p.res.Consumed, pr.ID)
		} else {
			p.res.Surviving = append(p.res.Surviving, pr)
		}
	}
}

// melee is pass 2. A fresh arc hits every live mob it covers.
func (p *pass) melee() {
	for _, arc := range p.in.MeleeArcs {
		if !arc.Fresh(p.in.Now, p.r.Params.MeleeWindow) {
			continue
		}
		for _, t := range p.mobs {
			if t.ent.Health <= 0 || !arc.Covers(t.ent.Position, p.r.Params.MeleeHalfAngle) {
				continue
			}
			p.damage(t, p.r.Params.MeleeDamage, FromMelee, meleeTags)
		}
	}
}

// contact is pass 3.
func (p *pass) contact() {
	for _, t := range p.mobs {
		if !t.ent.IsHostile() {
			continue
		}
		if geom.Distance(p.in.Observer, t.ent.Position) >= p.r.Params.ContactRadius {
			continue
		}
		dmg := p.r.Params.DefaultContactDamage
		if d := p.r.def(t.ent.DefinitionID); d != nil && d.BaseDamage > 0 {
			dmg = d.BaseDamage
		}
		p.hurtObserver(t.ent, dmg, "contact")
	}
}

func (p *pass) hurtObserver(e *world.Entity, dmg float64, cause string) {
	p.res.ObserverDamage += dmg
	p.res.Events = append(p.res.Events,
		Action{Tags: defenseTags, Magnitude: dmg},
		PlayerDamage{EntityID: e.ID, Damage: dmg, Traits: e.Traits, Cause: cause},
	)
}

func (p *pass) damage(t target, dmg float64, src Source, tags []string) {
	e := t.ent
	e.Health -= dmg
	p.res.Events = append(p.res.Events,
		Action{Tags: tags, Magnitude: dmg},
		Hit{EntityID: e.ID, Damage: dmg, Position: e.Position, Source: src},
	)
	if e.Health > 0 {
		return
	}
	p.kill(e, src)
}

func (p *pass) kill(e *world.Entity, src Source) {
	p.killed[e.ID] = true

	xp := 0
	if p.r.Progression != nil {
		xp = p.r.Progression.KillXP(e.Rank, e.Rarity, 1)
	}
	p.res.Events = append(p.res.Events, Kill{
		EntityID:     e.ID,
		DefinitionID: e.DefinitionID,
		XP:           xp,
		Rank:         e.Rank,
		Rarity:       e.Rarity,
		Position:     e.Position,
		Traits:       e.Traits,
		Source:       src,
	})

	def := p.r.def(e.DefinitionID)
	if def != nil && p.r.Loot != nil {
		if items := p.r.Loot.GenerateLoot(def, p.in.MagicFind); len(items) > 0 {
			drop := Drop{ID: p.r.newID(), Position: e.Position, Items: items}
			p.res.Loot = append(p.res.Loot, drop)
			p.res.Events = append(p.res.Events, LootSpawn{Drop: drop})
		}
	}

	if traits.GetEffects(e.Traits).DeathBlast && def != nil &&
		geom.Distance(p.in.Observer, e.Position) <= p.r.Params.DeathBlastRadius {
		p.hurtObserver(e, def.BaseDamage, "blast")
	}
}
