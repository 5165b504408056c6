package combat

import (
	"time"

	"github.com/pthm-cable/rift/geom"
	"github.com/pthm-cable/rift/projectile"
	"github.com/pthm-cable/rift/traits"
)

// Shooter identifies the mob behind a hostile pattern, captured when it fired.
type Shooter struct {
	DefinitionID string
	Traits       traits.Set
}

// IncomingInput is the hostile fire one tick resolves against the observer.
type IncomingInput struct {
	Projectiles []projectile.Projectile
	Shooters    map[string]Shooter // Keyed by projectile owner
	Observer    geom.Vec
	Arcs        []projectile.Arc // Observer swings; fresh ones deflect
	Now         time.Duration
}

// IncomingResult is the outcome of hostile fire for one tick.
type IncomingResult struct {
	Events    []Event
	Damage    float64
	Surviving []projectile.Projectile
	Consumed  []string // Projectiles that hit the observer
	Deflected []string
}

// Incoming resolves hostile projectiles against the observer. A projectile inside a
// fresh swing's deflection cone is knocked away before it can land; otherwise one
// within the hit radius deals its shooter's base damage. Observer projectiles pass
// through untouched.
func (r *Resolver) Incoming(in IncomingInput) IncomingResult {
	var res IncomingResult
	for _, pr := range in.Projectiles {
		if !pr.Hostile() {
			res.Surviving = append(res.Surviving, pr)
			continue
		}
		if r.deflected(pr, in) {
			res.Deflected = append(res.Deflected, pr.ID)
			continue
		}
		if geom.Distance(pr.Position, in.Observer) >= r.Params.HitRadius {
			res.Surviving = append(res.Surviving, pr)
			continue
		}

		s := in.Shooters[pr.Owner]
		dmg := r.Params.DefaultContactDamage
		if d := r.def(s.DefinitionID); d != nil && d.BaseDamage > 0 {
			dmg = d.BaseDamage
		}
		res.Damage += dmg
		res.Consumed = append(res.Consumed, pr.ID)
		res.Events = append(res.Events,
			Action{Tags: defenseTags, Magnitude: dmg},
			PlayerDamage{EntityID: pr.Owner, Damage: dmg, Traits: s.Traits, Cause: "projectile"},
		)
	}
	return res
}

func (r *Resolver) deflected(pr projectile.Projectile, in IncomingInput) bool {
	for _, a := range in.Arcs {
		if a.Fresh(in.Now, r.Params.MeleeWindow) && projectile.Deflects(pr, a.Origin, a.Angle, r.Projectile) {
			return true
		}
	}
	return false
}
