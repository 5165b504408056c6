package game

import (
	"time"

	"github.com/pthm-cable/rift/geom"
	"github.com/pthm-cable/rift/projectile"
	"github.com/pthm-cable/rift/session"
	"github.com/pthm-cable/rift/world"
)

// Autopilot constants
const (
	EngageRange    = 8.0 // Fire at hostile mobs closer than this
	WalkSpeed      = 5.0 // Units per second
	AttackCooldown = 250 * time.Millisecond
	CrowdSize      = 3 // Mobs in range before switching to the shotgun
)

// Autopilot stands in for a player. Each step it fights the closest hostile mob in
// range, then collects drops, then opens containers and harvests nodes in its
// chunk, and otherwise walks to the nearest extraction point.
type Autopilot struct {
	s     *session.Session
	reach float64

	lastAttack time.Duration
	attacked   bool
	scanned    map[world.Key]bool
	skipped    map[string]bool // Entities Interact refused
}

// NewAutopilot drives s, swinging at mobs within reach.
func NewAutopilot(s *session.Session, reach float64) *Autopilot {
	return &Autopilot{
		s:       s,
		reach:   reach,
		scanned: make(map[world.Key]bool),
		skipped: make(map[string]bool),
	}
}

// Step issues the observer's action for the coming tick of dt seconds.
func (a *Autopilot) Step(dt float64) {
	s := a.s
	if s.Done() {
		return
	}
	obs := s.Observer().Position
	a.scanNeighbour()

	if target, crowd, ok := a.nearestMob(obs); ok {
		a.attack(obs, target, crowd)
		return
	}

	if len(s.PickupLoot()) > 0 {
		return
	}
	if drop, ok := a.nearestDrop(obs); ok {
		a.moveToward(obs, drop, dt)
		return
	}

	if e, ok := a.nearestInteractable(obs); ok {
		if geom.Distance(obs, e.Position) > a.reach {
			a.moveToward(obs, e.Position, dt)
			return
		}
		if _, ok := s.Interact(e.ID); !ok {
			a.skipped[e.ID] = true
		}
		return
	}

	if s.Extract() {
		return
	}
	if exit, ok := a.nearestExit(obs); ok {
		a.moveToward(obs, exit, dt)
	}
}

// nearestMob returns the closest hostile mob within EngageRange and how many are
// in range. Ties go to the mob met first in chunk key order.
func (a *Autopilot) nearestMob(obs geom.Vec) (world.Entity, int, bool) {
	var best world.Entity
	bestDist := 0.0
	crowd := 0
	around := a.s.World().ChunksAround(a.s.ChunkKey(), 1)
	for _, k := range world.SortedKeys(around) {
		for _, e := range around[k].Mobs() {
			if !e.IsHostile() {
				continue
			}
			d := geom.Distance(obs, e.Position)
			if d > EngageRange {
				continue
			}
			if crowd == 0 || d < bestDist {
				best, bestDist = e, d
			}
			crowd++
		}
	}
	return best, crowd, crowd > 0
}

func (a *Autopilot) attack(obs geom.Vec, target world.Entity, crowd int) {
	now := a.s.Now()
	if a.attacked && now-a.lastAttack < AttackCooldown {
		return
	}
	a.attacked = true
	a.lastAttack = now

	angle := geom.Bearing(obs, target.Position)
	switch {
	case geom.Distance(obs, target.Position) <= a.reach:
		a.s.Swing(angle, a.reach)
	case crowd >= CrowdSize:
		a.s.Fire(projectile.Shotgun, angle)
	default:
		a.s.Fire(projectile.Single, angle)
	}
}

func (a *Autopilot) nearestDrop(obs geom.Vec) (geom.Vec, bool) {
	var best geom.Vec
	found := false
	bestDist := 0.0
	for _, d := range a.s.Drops() {
		dist := geom.Distance(obs, d.Position)
		if !found || dist < bestDist {
			best, bestDist, found = d.Position, dist, true
		}
	}
	return best, found
}

// nearestInteractable returns the closest container or resource node in the
// observer's chunk.
func (a *Autopilot) nearestInteractable(obs geom.Vec) (world.Entity, bool) {
	c, ok := a.s.World().Chunk(a.s.ChunkKey())
	if !ok {
		return world.Entity{}, false
	}
	var best world.Entity
	found := false
	bestDist := 0.0
	for _, e := range c.Entities {
		if e.Kind != world.Container && e.Kind != world.Resource {
			continue
		}
		if a.skipped[e.ID] {
			continue
		}
		d := geom.Distance(obs, e.Position)
		if !found || d < bestDist {
			best, bestDist, found = e, d, true
		}
	}
	return best, found
}

func (a *Autopilot) nearestExit(obs geom.Vec) (geom.Vec, bool) {
	w := a.s.World()
	var best geom.Vec
	found := false
	bestDist := 0.0
	for _, k := range w.ExtractionPoints {
		p := w.Center(k)
		d := geom.Distance(obs, p)
		if !found || d < bestDist {
			best, bestDist, found = p, d, true
		}
	}
	return best, found
}

// scanNeighbour scans one not yet scanned chunk next to the observer.
func (a *Autopilot) scanNeighbour() {
	here := a.s.ChunkKey()
	for _, d := range [...]world.Key{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
		k := world.Key{X: here.X + d.X, Y: here.Y + d.Y}
		if a.scanned[k] {
			continue
		}
		if _, ok := a.s.World().Chunk(k); !ok {
			continue
		}
		a.scanned[k] = true
		a.s.Scan(k)
		return
	}
}

func (a *Autopilot) moveToward(obs, target geom.Vec, dt float64) {
	dist := geom.Distance(obs, target)
	step := min(WalkSpeed*dt, dist)
	if step <= 0 {
		return
	}
	next := geom.Polar(obs, geom.Bearing(obs, target), step)
	a.s.Move(next.X-obs.X, next.Y-obs.Y)
}
