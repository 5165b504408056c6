package world

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pthm-cable/rift/config"
	"github.com/pthm-cable/rift/defs"
	"github.com/pthm-cable/rift/director"
	"github.com/pthm-cable/rift/rng"
	"github.com/pthm-cable/rift/traits"
)

// Point-of-interest definitions placed by the generator.
const (
	BunkerID = "ruin_bunker"
	ShrineID = "ruin_shrine"
	CrateID  = "cont_supply_crate"
)

// Params holds the generation constants.
type Params struct {
	ChunkSize       float64
	IslandBase      float64
	IslandSpread    float64
	MobMin          int
	MobMax          int
	MobMargin       float64
	ResourceMin     int
	ResourceMax     int
	ResourceMargin  float64
	POIThreshold    float64
	POILootTable    string
	DebugSeedPrefix string
}

// DefaultParams returns the stock generation constants.
func DefaultParams() Params {
	return Params{
		ChunkSize:       100,
		IslandBase:      0.8,
		IslandSpread:    0.3,
		MobMin:          1,
		MobMax:          4,
		MobMargin:       10,
		ResourceMin:     1,
		ResourceMax:     6,
		ResourceMargin:  5,
		POIThreshold:    0.85,
		POILootTable:    "loot_ruins_generic",
		DebugSeedPrefix: "dev",
	}
}

// ParamsFromConfig extracts generation constants from the loaded configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	c := cfg.World
	return Params{
		ChunkSize:       c.ChunkSize,
		IslandBase:      c.IslandBase,
		IslandSpread:    c.IslandSpread,
		MobMin:          c.MobMin,
		MobMax:          c.MobMax,
		MobMargin:       c.MobMargin,
		ResourceMin:     c.ResourceMin,
		ResourceMax:     c.ResourceMax,
		ResourceMargin:  c.ResourceMargin,
		POIThreshold:    c.POIThreshold,
		POILootTable:    c.POILootTable,
		DebugSeedPrefix: c.DebugSeedPrefix,
	}
}

// Options carries the non-deterministic inputs of generation.
type Options struct {
	Params Params
	Debug  bool             // Force a debug world regardless of seed
	Clock  func() time.Time // Defaults to time.Now
	NewID  func() string    // Defaults to a fresh ULID
}

// DefaultOptions returns options with stock constants.
func DefaultOptions() Options {
	return Options{Params: DefaultParams()}
}

func newULID() string {
	return ulid.Make().String()
}

// generator carries per-call state through the build.
type generator struct {
	rng       *rng.Generator
	tables    *defs.Tables
	params    Params
	newID     func() string
	mutations traits.Set
	health    float64 // Spawn health multiplier from the mutations
}

// Generate builds the world for seed on a size x size grid.
//
// The chunk layout and every entity attribute are a pure function of seed, size,
// the definition tables and the director's weights. Entity ids and GeneratedAt are
// not. A nil director draws no mutations.
func Generate(seed string, size int, tables *defs.Tables, dir *director.Director, opts Options) *World {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = newULID
	}
	p := opts.Params

	g := &generator{
		rng:    rng.New(seed),
		tables: tables,
		params: p,
		newID:  opts.NewID,
	}

	if dir != nil {
		g.mutations = traits.Of(dir.SelectTraits(g.rng)...)
	}
	g.health = traits.HealthMultiplier(g.mutations)

	w := &World{
		Seed:      seed,
		Width:     size,
		Height:    size,
		ChunkSize: p.ChunkSize,
		Chunks:    make(map[Key]Chunk),
		Mutations: g.mutations,
		Debug:     opts.Debug || (p.DebugSeedPrefix != "" && strings.HasPrefix(seed, p.DebugSeedPrefix)),
	}

	// Insertion order drives the extraction pick.
	var order []Key
	center := size / 2
	half := float64(size) / 2
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			dx := float64(x - center)
			dy := float64(y - center)
			dist := math.Sqrt(dx*dx+dy*dy) / half
			noise := g.rng.Next()

			if dist < p.IslandBase+noise*p.IslandSpread {
				k := Key{X: x, Y: y}
				w.Chunks[k] = g.chunk(x, y, dist, noise)
				order = append(order, k)
			}
		}
	}

	if len(order) > 0 {
		exit := rng.Pick(g.rng, order)
		c := w.Chunks[exit]
		c.Extraction = true
		w.Chunks[exit] = c
		w.ExtractionPoints = append(w.ExtractionPoints, exit)
	}

	w.GeneratedAt = opts.Clock()
	return w
}

func biomeFor(dist, noise float64) Biome {
	switch {
	case dist < 0.3:
		return Industrial
	case dist < 0.6:
		if noise > 0.5 {
			return Ruins
		}
		return Overgrowth
	default:
		return Wasteland
	}
}

func genreFor(noise float64) defs.Genre {
	switch {
	case noise > 0.8:
		return defs.Eldritch
	case noise > 0.6:
		return defs.SciFi
	case noise < 0.2:
		return defs.Fantasy
	default:
		return defs.PostApoc
	}
}

// rollTier maps one draw onto the cumulative rank/rarity table.
func rollTier(r *rng.Generator) (defs.Rank, defs.Rarity) {
	roll := r.Next() * 100
	switch {
	case roll < 45:
		return defs.RankF, defs.Common
	case roll < 65:
		return defs.RankE, defs.Uncommon
	case roll < 80:
		return defs.RankD, defs.Rare
	case roll < 90:
		return defs.RankC, defs.Epic
	case roll < 95:
		return defs.RankB, defs.Legendary
	case roll < 99:
		return defs.RankA, defs.Legendary
	default:
		return defs.RankS, defs.Artifact
	}
}

func (g *generator) chunk(x, y int, dist, noise float64) Chunk {
	rank, rarity := rollTier(g.rng)
	c := Chunk{
		ID:          "chk_" + strconv.Itoa(x) + "_" + strconv.Itoa(y),
		X:           x,
		Y:           y,
		Biome:       biomeFor(dist, noise),
		Genre:       genreFor(noise),
		Difficulty:  rank,
		Rarity:      rarity,
		Traversable: true,
	}

	origin := Position{X: float64(x) * g.params.ChunkSize, Y: float64(y) * g.params.ChunkSize}
	g.mobs(&c, origin)
	g.resources(&c, origin)
	g.pointOfInterest(&c, origin, noise)
	return c
}

// eligibleMobs returns the genre's mobs at or below rank, falling back to its grunts.
func (g *generator) eligibleMobs(genre defs.Genre, rank defs.Rank) []*defs.MobDef {
	all := g.tables.MobsOfGenre(genre)
	var valid []*defs.MobDef
	for _, d := range all {
		if d.Rank <= rank {
			valid = append(valid, d)
		}
	}
	if len(valid) == 0 {
		for _, d := range all {
			if d.HasTag("grunt") {
				valid = append(valid, d)
			}
		}
	}
	return valid
}

// inset returns a coordinate margin units inside a chunk edge at base.
func (g *generator) inset(base, margin float64) float64 {
	return base + g.rng.Range(margin, g.params.ChunkSize-margin)
}

func (g *generator) mobs(c *Chunk, origin Position) {
	valid := g.eligibleMobs(c.Genre, c.Difficulty)
	count := int(math.Floor(g.rng.Range(float64(g.params.MobMin), float64(g.params.MobMax))))
	for i := 0; i < count; i++ {
		if len(valid) == 0 {
			continue
		}
		def := rng.Pick(g.rng, valid)
		px := g.inset(origin.X, g.params.MobMargin)
		py := g.inset(origin.Y, g.params.MobMargin)
		c.Entities = append(c.Entities, Entity{
			ID:           g.newID(),
			Kind:         Mob,
			DefinitionID: def.ID,
			Position:     Position{X: px, Y: py},
			Rank:         def.Rank,
			Rarity:       defs.Common,
			Health:       def.BaseHealth * g.health,
			Hostile:      true,
			Traits:       g.mutations,
		})
	}
}

func (g *generator) resources(c *Chunk, origin Position) {
	table := g.tables.ResourceSpawn(c.Biome.String())
	if g.rng.Next() >= table.Density {
		return
	}
	count := int(math.Floor(g.rng.Range(float64(g.params.ResourceMin), float64(g.params.ResourceMax))))
	for i := 0; i < count; i++ {
		id := table.Choose(g.rng.Next())
		px := g.inset(origin.X, g.params.ResourceMargin)
		py := g.inset(origin.Y, g.params.ResourceMargin)
		c.Entities = append(c.Entities, Entity{
			ID:           g.newID(),
			Kind:         Resource,
			DefinitionID: id,
			Position:     Position{X: px, Y: py},
			Rank:         defs.RankF,
			Rarity:       defs.Common,
		})
	}
}

func (g *generator) pointOfInterest(c *Chunk, origin Position, noise float64) {
	if g.rng.Next() <= g.params.POIThreshold {
		return
	}
	ruin := ShrineID
	if noise > 0.6 {
		ruin = BunkerID
	}
	half := g.params.ChunkSize / 2
	pos := Position{X: origin.X + half, Y: origin.Y + half}

	c.Entities = append(c.Entities,
		Entity{
			ID:           g.newID(),
			Kind:         Structure,
			DefinitionID: ruin,
			Position:     pos,
			Rank:         defs.RankD,
			Rarity:       defs.Uncommon,
		},
		Entity{
			ID:           g.newID(),
			Kind:         Container,
			DefinitionID: CrateID,
			Position:     Position{X: pos.X + 2, Y: pos.Y + 2},
			Rank:         defs.RankD,
			Rarity:       defs.Uncommon,
			LootTableID:  g.params.POILootTable,
		},
	)
}
