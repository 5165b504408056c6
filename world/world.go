// Package world holds the chunk grid, its entities, and the seeded generator that
// builds it.
package world

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pthm-cable/rift/defs"
	"github.com/pthm-cable/rift/geom"
	"github.com/pthm-cable/rift/traits"
)

// Position is a point in world units.
type Position = geom.Vec

// EntityKind discriminates what an entity is.
type EntityKind uint8

const (
	Mob EntityKind = iota
	NPC
	Resource
	Structure
	ExtractionPoint
	Container
)

var kindNames = []string{"MOB", "NPC", "RESOURCE", "STRUCTURE", "EXTRACTION", "CONTAINER"}

func (k EntityKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("EntityKind(%d)", k)
}

func (k EntityKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Biome is a chunk's terrain classification.
type Biome uint8

const (
	Wasteland Biome = iota
	Overgrowth
	Ruins
	Industrial
	CyberCity
)

var biomeNames = []string{"WASTELAND", "OVERGROWTH", "RUINS", "INDUSTRIAL", "CYBER_CITY"}

func (b Biome) String() string {
	if int(b) < len(biomeNames) {
		return biomeNames[b]
	}
	return fmt.Sprintf("Biome(%d)", b)
}

func (b Biome) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// Entity is anything placed in a chunk.
// Health is zero for entities without health; Hostile is false unless set.
type Entity struct {
	ID           string      `json:"id"`
	Kind         EntityKind  `json:"kind"`
	DefinitionID string      `json:"definition_id"`
	Position     Position    `json:"position"`
	Rank         defs.Rank   `json:"rank"`
	Rarity       defs.Rarity `json:"rarity"`
	Health       float64     `json:"health,omitempty"`
	Hostile      bool        `json:"hostile,omitempty"`
	LootTableID  string      `json:"loot_table_id,omitempty"`
	Traits       traits.Set  `json:"traits"`
}

// Alive reports whether the entity is a mob with positive health.
func (e Entity) Alive() bool {
	return e.Kind == Mob && e.Health > 0
}

// IsHostile reports whether the entity is a live hostile mob.
func (e Entity) IsHostile() bool {
	return e.Alive() && e.Hostile
}

// Key addresses a chunk on the integer grid.
type Key struct {
	X, Y int
}

// String returns the "x,y" form.
func (k Key) String() string {
	return strconv.Itoa(k.X) + "," + strconv.Itoa(k.Y)
}

func (k Key) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ParseKey parses the "x,y" form.
func ParseKey(s string) (Key, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Key{}, fmt.Errorf("chunk key %q: missing comma", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Key{}, fmt.Errorf("chunk key %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Key{}, fmt.Errorf("chunk key %q: %w", s, err)
	}
	return Key{X: x, Y: y}, nil
}

// KeyAt returns the key of the chunk containing pos.
func KeyAt(pos Position, chunkSize float64) Key {
	return Key{X: int(math.Floor(pos.X / chunkSize)), Y: int(math.Floor(pos.Y / chunkSize))}
}

// Chunk is one grid cell and the entities inside it.
type Chunk struct {
	ID          string      `json:"id"`
	X           int         `json:"x"`
	Y           int         `json:"y"`
	Biome       Biome       `json:"biome"`
	Genre       defs.Genre  `json:"genre"`
	Difficulty  defs.Rank   `json:"difficulty"`
	Rarity      defs.Rarity `json:"rarity"`
	Entities    []Entity    `json:"entities"`
	Traversable bool        `json:"traversable"`
	Extraction  bool        `json:"extraction"`
}

// Key returns the chunk's grid key.
func (c Chunk) Key() Key {
	return Key{X: c.X, Y: c.Y}
}

// Clone returns a copy that shares no entity storage with c.
func (c Chunk) Clone() Chunk {
	c.Entities = slices.Clone(c.Entities)
	return c
}

// Mobs returns the live mobs in the chunk.
func (c Chunk) Mobs() []Entity {
	var out []Entity
	for _, e := range c.Entities {
		if e.Alive() {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entities of kind the chunk holds.
func (c Chunk) Count(kind EntityKind) int {
	n := 0
	for _, e := range c.Entities {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Find returns the index of the entity with id, or -1.
func (c Chunk) Find(id string) int {
	return slices.IndexFunc(c.Entities, func(e Entity) bool { return e.ID == id })
}

// Without returns a copy of c with the entity id removed.
func (c Chunk) Without(id string) Chunk {
	c.Entities = slices.DeleteFunc(slices.Clone(c.Entities), func(e Entity) bool { return e.ID == id })
	return c
}

// World is a generated chunk grid.
type World struct {
	Seed             string        `json:"seed"`
	Width            int           `json:"width"`
	Height           int           `json:"height"`
	ChunkSize        float64       `json:"chunk_size"`
	Chunks           map[Key]Chunk `json:"chunks"`
	GeneratedAt      time.Time     `json:"generated_at"`
	ExtractionPoints []Key         `json:"extraction_points"`
	Mutations        traits.Set    `json:"mutations"`
	Debug            bool          `json:"debug"`
}

// Chunk returns the chunk at key.
func (w *World) Chunk(k Key) (Chunk, bool) {
	c, ok := w.Chunks[k]
	return c, ok
}

// Keys returns every populated key in X-then-Y order.
func (w *World) Keys() []Key {
	return SortedKeys(w.Chunks)
}

// ChunksAround returns the populated chunks within ring cells of center,
// including center itself.
func (w *World) ChunksAround(center Key, ring int) map[Key]Chunk {
	out := make(map[Key]Chunk)
	for x := center.X - ring; x <= center.X+ring; x++ {
		for y := center.Y - ring; y <= center.Y+ring; y++ {
			k := Key{X: x, Y: y}
			if c, ok := w.Chunks[k]; ok {
				out[k] = c
			}
		}
	}
	return out
}

// Apply replaces chunks with their updated versions.
func (w *World) Apply(updates map[Key]Chunk) {
	for k, c := range updates {
		if _, ok := w.Chunks[k]; ok {
			w.Chunks[k] = c
		}
	}
}

// Center returns the world-space centre of the chunk at k.
func (w *World) Center(k Key) Position {
	return Position{
		X: (float64(k.X) + 0.5) * w.ChunkSize,
		Y: (float64(k.Y) + 0.5) * w.ChunkSize,
	}
}

// MobCount returns the number of live mobs across the world.
func (w *World) MobCount() int {
	n := 0
	for _, c := range w.Chunks {
		n += len(c.Mobs())
	}
	return n
}

// SortedKeys returns the keys of m in X-then-Y order.
func SortedKeys(m map[Key]Chunk) []Key {
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		if a.X != b.X {
			return a.X - b.X
		}
		return a.Y - b.Y
	})
	return keys
}
