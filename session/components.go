package session

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/rift/combat"
	"github.com/pthm-cable/rift/projectile"
)

// Firing is a live firing pattern and the projectiles of it already spent.
type Firing struct {
	Pattern projectile.Pattern
	Spent   map[string]bool // Projectile ids that hit something
}

// Swing is an observer melee arc. A swing lands in the first tick it is resolved
// and keeps deflecting hostile fire until its window closes.
type Swing struct {
	Arc    projectile.Arc
	Landed bool
}

// Loot is a drop lying in the world.
type Loot struct {
	Drop combat.Drop
}

// store is the ECS world holding everything ephemeral a session spawns.
type store struct {
	world *ecs.World

	firingMapper  *ecs.Map1[Firing]
	hostileMapper *ecs.Map2[Firing, combat.Shooter]
	swingMapper   *ecs.Map1[Swing]
	lootMapper    *ecs.Map1[Loot]

	firingFilter *ecs.Filter1[Firing]
	swingFilter  *ecs.Filter1[Swing]
	lootFilter   *ecs.Filter1[Loot]

	firingMap  *ecs.Map[Firing]
	shooterMap *ecs.Map[combat.Shooter]
}

func newStore() *store {
	w := ecs.NewWorld()
	return &store{
		world:         w,
		firingMapper:  ecs.NewMap1[Firing](w),
		hostileMapper: ecs.NewMap2[Firing, combat.Shooter](w),
		swingMapper:   ecs.NewMap1[Swing](w),
		lootMapper:    ecs.NewMap1[Loot](w),
		firingFilter:  ecs.NewFilter1[Firing](w),
		swingFilter:   ecs.NewFilter1[Swing](w),
		lootFilter:    ecs.NewFilter1[Loot](w),
		firingMap:     ecs.NewMap[Firing](w),
		shooterMap:    ecs.NewMap[combat.Shooter](w),
	}
}

func (s *store) addPattern(p projectile.Pattern) ecs.Entity {
	return s.firingMapper.NewEntity(&Firing{Pattern: p, Spent: make(map[string]bool)})
}

func (s *store) addHostilePattern(p projectile.Pattern, shooter combat.Shooter) ecs.Entity {
	return s.hostileMapper.NewEntity(&Firing{Pattern: p, Spent: make(map[string]bool)}, &shooter)
}

func (s *store) addSwing(a projectile.Arc) ecs.Entity {
	return s.swingMapper.NewEntity(&Swing{Arc: a})
}

func (s *store) addDrop(d combat.Drop) ecs.Entity {
	return s.lootMapper.NewEntity(&Loot{Drop: d})
}

// remove deletes entities collected during a query.
func (s *store) remove(entities []ecs.Entity) {
	for _, e := range entities {
		if s.world.Alive(e) {
			s.world.RemoveEntity(e)
		}
	}
}

// counts returns the number of live patterns, swings and drops.
func (s *store) counts() (patterns, swings, drops int) {
	q := s.firingFilter.Query()
	for q.Next() {
		patterns++
	}
	sq := s.swingFilter.Query()
	for sq.Next() {
		swings++
	}
	lq := s.lootFilter.Query()
	for lq.Next() {
		drops++
	}
	return patterns, swings, drops
}
