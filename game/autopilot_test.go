package game

import (
	"fmt"
	"testing"

	"github.com/pthm-cable/rift/defs"
	"github.com/pthm-cable/rift/geom"
	"github.com/pthm-cable/rift/loot"
	"github.com/pthm-cable/rift/session"
	"github.com/pthm-cable/rift/world"
)

const pilotMobs = `mobs:
  - {id: biter, name: Biter, genre: FANTASY, tags: [grunt], rank: E, size: TINY, behavior: AGGRESSIVE, base_health: 30, base_damage: 10, speed: 2, view_range: 10}
`

const pilotResources = `resources:
  - {id: rock, name: Rock, rank: F, rarity: COMMON}
default:
  density: 0.4
  nodes:
    - {id: rock, below: 1.0}
`

// pilotSession starts a session on a 3x3 grid of 100-unit chunks with the exit at
// (2,1). The observer lands at (150,150).
func pilotSession(t *testing.T, ents ...world.Entity) *session.Session {
	t.Helper()
	return pilotSessionAt(t, nil, ents...)
}

func pilotSessionAt(t *testing.T, spawn *geom.Vec, ents ...world.Entity) *session.Session {
	t.Helper()
	tables, err := defs.Parse([]byte(pilotMobs), []byte(pilotResources))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	w := &world.World{Seed: "pilot", Width: 3, Height: 3, ChunkSize: 100, Chunks: make(map[world.Key]world.Chunk)}
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			w.Chunks[world.Key{X: x, Y: y}] = world.Chunk{ID: fmt.Sprintf("c%d%d", x, y), X: x, Y: y, Traversable: true}
		}
	}
	exit := world.Key{X: 2, Y: 1}
	c := w.Chunks[exit]
	c.Extraction = true
	w.Chunks[exit] = c
	w.ExtractionPoints = []world.Key{exit}
	for _, e := range ents {
		k := world.KeyAt(e.Position, w.ChunkSize)
		c := w.Chunks[k]
		c.Entities = append(c.Entities, e)
		w.Chunks[k] = c
	}

	deps := session.Deps{Tables: tables, Loot: loot.NewTable("pilot", loot.DefaultParams())}
	opts := session.DefaultOptions()
	opts.Spawn = spawn
	return session.New(w, deps, opts)
}

// fly runs the autopilot until the session ends or maxTicks pass.
func fly(s *session.Session, maxTicks int) {
	pilot := NewAutopilot(s, 2.0)
	for i := 0; i < maxTicks && !s.Done(); i++ {
		pilot.Step(0.1)
		s.Tick(0.1)
	}
}

func TestAutopilotWalksToExit(t *testing.T) {
	s := pilotSession(t)
	fly(s, 400)

	if s.Outcome() != session.Extracted {
		t.Fatalf("outcome = %q after %d ticks, want extracted", s.Outcome(), s.Ticks())
	}
	if s.ChunkKey() != (world.Key{X: 2, Y: 1}) {
		t.Errorf("extracted from %v", s.ChunkKey())
	}
	if s.Fog().Level(world.Key{X: 1, Y: 0}) == world.Unknown {
		t.Error("neighbouring chunk never scanned")
	}
}

func TestAutopilotFightsBeforeLeaving(t *testing.T) {
	biter := world.Entity{
		ID:           "m1",
		Kind:         world.Mob,
		DefinitionID: "biter",
		Position:     geom.Vec{X: 156, Y: 150},
		Rank:         defs.RankE,
		Health:       30,
		Hostile:      true,
	}
	s := pilotSession(t, biter)
	fly(s, 600)

	if s.Record().Kills != 1 {
		t.Errorf("kills = %d, want 1", s.Record().Kills)
	}
	if s.Outcome() != session.Extracted {
		t.Errorf("outcome = %q, want extracted", s.Outcome())
	}
	if s.Observer().Health != 100 {
		t.Errorf("observer health = %v, want 100", s.Observer().Health)
	}
	if len(s.Drops()) != 0 {
		t.Errorf("left %d drops behind", len(s.Drops()))
	}
}

func TestAutopilotLootsChunk(t *testing.T) {
	chest := world.Entity{ID: "chest", Kind: world.Container, Position: geom.Vec{X: 170, Y: 150}, Rank: defs.RankE}
	ghost := world.Entity{ID: "ghost", Kind: world.Resource, DefinitionID: "unknown", Position: geom.Vec{X: 140, Y: 150}}
	s := pilotSession(t, chest, ghost)
	fly(s, 600)

	if s.Outcome() != session.Extracted {
		t.Fatalf("outcome = %q, want extracted", s.Outcome())
	}
	if len(s.Inventory()) < 2 {
		t.Errorf("inventory = %v, want the chest contents", s.Inventory())
	}
	c, _ := s.World().Chunk(world.Key{X: 1, Y: 1})
	if c.Find("chest") >= 0 {
		t.Error("chest still in the world")
	}
	if c.Find("ghost") < 0 {
		t.Error("unusable node was removed")
	}
}

func TestNearestMobTieBreaksByChunk(t *testing.T) {
	biter := func(id string, x float64) world.Entity {
		return world.Entity{ID: id, Kind: world.Mob, DefinitionID: "biter", Position: geom.Vec{X: x, Y: 150}, Rank: defs.RankE, Health: 30, Hostile: true}
	}
	// The observer stands on the border of chunks (0,1) and (1,1), 4 units from each mob.
	s := pilotSessionAt(t, &geom.Vec{X: 100, Y: 150}, biter("east", 104), biter("west", 96))
	pilot := NewAutopilot(s, 2.0)

	for i := 0; i < 50; i++ {
		target, crowd, ok := pilot.nearestMob(s.Observer().Position)
		if !ok || crowd != 2 {
			t.Fatalf("nearestMob = %v, crowd %d", ok, crowd)
		}
		if target.ID != "west" {
			t.Fatalf("attempt %d picked %q, want west from chunk 0,1", i, target.ID)
		}
	}
}
