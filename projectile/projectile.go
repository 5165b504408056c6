// Package projectile derives point-in-time projectile sets from firing patterns.
//
// Projectiles are never stored. A Pattern records who fired what, from where and when;
// At recomputes the live projectiles for any instant, so the same pattern and time
// always produce the same points.
package projectile

import (
	"fmt"
	"math"
	"time"

	"github.com/pthm-cable/rift/config"
	"github.com/pthm-cable/rift/geom"
)

// Kind is a firing pattern shape.
type Kind uint8

const (
	Single Kind = iota
	Shotgun
	Nova
	Spiral
	Melee // Mob melee swing; marks an attack but yields no projectiles
)

var kindNames = [...]string{"SINGLE", "SHOTGUN", "NOVA", "SPIRAL", "MELEE"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind maps a pattern name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// ObserverOwner is the Owner of patterns fired by the observer.
const ObserverOwner = "observer"

// Pattern is a firing record from which projectiles are derived.
type Pattern struct {
	ID        string
	Kind      Kind
	Origin    geom.Vec
	BaseAngle float64
	StartedAt time.Duration // Sim clock time the pattern was fired
	Owner     string        // Entity id of the firer, or ObserverOwner
}

// Hostile reports whether the pattern was fired by a mob.
func (p Pattern) Hostile() bool {
	return p.Owner != ObserverOwner
}

// Projectile is one point of a pattern at a specific instant.
type Projectile struct {
	ID        string // "<pattern id>/<index>"
	PatternID string
	Owner     string
	Position  geom.Vec
	Angle     float64
	Speed     float64
}

// Hostile reports whether the projectile was fired by a mob.
func (p Projectile) Hostile() bool {
	return p.Owner != ObserverOwner
}

// Params holds the pattern constants.
type Params struct {
	Speed         float64 // Units per second
	Lifespan      float64 // Seconds
	ShotgunSpread float64
	NovaCount     int
	SpiralArms    int
	SpiralSpin    float64 // Radians per second
	DeflectRange  float64
	DeflectAngle  float64
}

// DefaultParams returns the stock pattern constants.
func DefaultParams() Params {
	return Params{
		Speed:         10,
		Lifespan:      2.0,
		ShotgunSpread: 0.25,
		NovaCount:     8,
		SpiralArms:    4,
		SpiralSpin:    3.0,
		DeflectRange:  2.0,
		DeflectAngle:  0.75,
	}
}

// ParamsFromConfig extracts pattern constants from the loaded configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	c := cfg.Projectile
	return Params{
		Speed:         c.Speed,
		Lifespan:      c.Lifespan,
		ShotgunSpread: c.ShotgunSpread,
		NovaCount:     c.NovaCount,
		SpiralArms:    c.SpiralArms,
		SpiralSpin:    c.SpiralSpin,
		DeflectRange:  c.DeflectRange,
		DeflectAngle:  c.DeflectAngle,
	}
}

// elapsed returns seconds since the pattern was fired.
func elapsed(p Pattern, now time.Duration) float64 {
	return (now - p.StartedAt).Seconds()
}

// Expired reports whether the pattern can no longer yield projectiles.
func Expired(p Pattern, now time.Duration, params Params) bool {
	return elapsed(p, now) > params.Lifespan
}

// At returns the pattern's projectiles at time now.
// Before the pattern starts or after its lifespan the result is empty.
func At(p Pattern, now time.Duration, params Params) []Projectile {
	t := elapsed(p, now)
	if t < 0 || t > params.Lifespan {
		return nil
	}
	dist := params.Speed * t

	var angles []float64
	switch p.Kind {
	case Single:
		angles = []float64{p.BaseAngle}
	case Shotgun:
		angles = []float64{p.BaseAngle - params.ShotgunSpread, p.BaseAngle, p.BaseAngle + params.ShotgunSpread}
	case Nova:
		angles = fan(p.BaseAngle, params.NovaCount)
	case Spiral:
		angles = fan(p.BaseAngle+params.SpiralSpin*t, params.SpiralArms)
	default:
		return nil
	}

	out := make([]Projectile, len(angles))
	for i, a := range angles {
		out[i] = Projectile{
			ID:        fmt.Sprintf("%s/%d", p.ID, i),
			PatternID: p.ID,
			Owner:     p.Owner,
			Position:  geom.Polar(p.Origin, a, dist),
			Angle:     a,
			Speed:     params.Speed,
		}
	}
	return out
}

// fan spreads n directions evenly around a full turn starting at base.
func fan(base float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	step := 2 * math.Pi / float64(n)
	angles := make([]float64, n)
	for i := range angles {
		angles[i] = base + float64(i)*step
	}
	return angles
}

// Deflects reports whether a swing from origin along angle knocks the projectile away.
func Deflects(p Projectile, origin geom.Vec, angle float64, params Params) bool {
	if geom.Distance(p.Position, origin) > params.DeflectRange {
		return false
	}
	return geom.AngleDiff(geom.Bearing(origin, p.Position), angle) < params.DeflectAngle
}
