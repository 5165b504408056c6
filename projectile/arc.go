package projectile

import (
	"time"

	"github.com/pthm-cable/rift/geom"
)

// Arc is a single melee swing.
type Arc struct {
	Origin    geom.Vec
	Angle     float64
	Reach     float64
	StartedAt time.Duration
}

// Fresh reports whether the swing is still inside its damage window at time now.
func (a Arc) Fresh(now, window time.Duration) bool {
	age := now - a.StartedAt
	return age >= 0 && age < window
}

// Covers reports whether target lies within reach and halfAngle radians of the swing direction.
func (a Arc) Covers(target geom.Vec, halfAngle float64) bool {
	if geom.Distance(a.Origin, target) > a.Reach {
		return false
	}
	return geom.AngleDiff(geom.Bearing(a.Origin, target), a.Angle) < halfAngle
}
