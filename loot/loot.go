// Package loot rolls item drops for kills, containers and resource nodes.
//
// Items are stubs: identity, rank and rarity only. Stats and affixes belong to the
// inventory layer.
package loot

import (
	"fmt"
	"math"

	"github.com/oklog/ulid/v2"

	"github.com/pthm-cable/rift/config"
	"github.com/pthm-cable/rift/defs"
	"github.com/pthm-cable/rift/rng"
)

// Item is a dropped item.
type Item struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Rank       defs.Rank   `json:"rank"`
	Rarity     defs.Rarity `json:"rarity"`
	Identified bool        `json:"identified"`
}

// Params holds drop chances before magic find.
type Params struct {
	BiologicalChance float64
	MechanicalChance float64
	BossLegendary    float64
	TomeChance       float64
	ChestBonus       float64
}

// DefaultParams returns the stock drop chances.
func DefaultParams() Params {
	return Params{
		BiologicalChance: 0.6,
		MechanicalChance: 0.5,
		BossLegendary:    0.25,
		TomeChance:       0.10,
		ChestBonus:       0.2,
	}
}

// ParamsFromConfig extracts drop chances from the loaded configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	p := DefaultParams()
	p.BiologicalChance = cfg.Loot.BiologicalChance
	p.MechanicalChance = cfg.Loot.MechanicalChance
	p.BossLegendary = cfg.Loot.BossLegendary
	return p
}

var gearChance = map[defs.Rank]float64{
	defs.RankF:   0.05,
	defs.RankE:   0.08,
	defs.RankD:   0.12,
	defs.RankC:   0.18,
	defs.RankB:   0.25,
	defs.RankA:   0.35,
	defs.RankS:   0.50,
	defs.RankSS:  0.75,
	defs.RankSSS: 1.0,
}

// GearChance returns the chance a mob drops rank gear, before magic find.
func GearChance(def *defs.MobDef) float64 {
	chance, ok := gearChance[def.Rank]
	if !ok {
		chance = 0.05
	}
	if def.HasTag("elite") {
		chance *= 2
	}
	if def.HasTag("boss") {
		chance = math.Max(chance, 0.8)
	}
	if def.HasTag("grunt") {
		chance *= 0.5
	}
	return math.Min(chance, 1.0)
}

// Table rolls drops from its own seeded sequence. Not safe for concurrent use.
type Table struct {
	rng    *rng.Generator
	params Params
	newID  func() string
}

// NewTable creates a table whose rolls follow seed.
func NewTable(seed string, params Params) *Table {
	return &Table{
		rng:    rng.New(seed),
		params: params,
		newID:  func() string { return ulid.Make().String() },
	}
}

// roll reports whether a draw lands under chance.
func (t *Table) roll(chance float64) bool {
	return t.rng.Next() < chance
}

func (t *Table) rollRarity() defs.Rarity {
	r := t.rng.Next()
	switch {
	case r > 0.99:
		return defs.Legendary
	case r > 0.95:
		return defs.Epic
	case r > 0.85:
		return defs.Rare
	case r > 0.60:
		return defs.Uncommon
	default:
		return defs.Common
	}
}

func (t *Table) item(name string, rank defs.Rank, identified bool) Item {
	return Item{
		ID:         t.newID(),
		Name:       name,
		Rank:       rank,
		Rarity:     t.rollRarity(),
		Identified: identified,
	}
}

func gearName(rank defs.Rank) string {
	return fmt.Sprintf("Unidentified %s-Rank Gear", rank)
}

// GenerateLoot rolls the drops for a killed mob. magicFind scales every chance.
func (t *Table) GenerateLoot(def *defs.MobDef, magicFind float64) []Item {
	if def == nil {
		return nil
	}
	p := t.params
	var out []Item

	if def.HasTag("biological") && t.roll(p.BiologicalChance*magicFind) {
		out = append(out, t.item("Organic Remains", defs.RankF, false))
	}
	if def.HasTag("mechanical") && t.roll(p.MechanicalChance*magicFind) {
		out = append(out, t.item("Salvaged Component", defs.RankE, false))
	}

	gear := GearChance(def) * magicFind
	if t.roll(gear) {
		out = append(out, t.item(gearName(def.Rank), def.Rank, false))
	}
	if def.HasTag("elite") && t.roll(gear*0.5) {
		out = append(out, t.item(gearName(def.Rank), def.Rank, false))
	}

	if def.HasTag("boss") {
		it := t.item(gearName(def.Rank), def.Rank, false)
		it.Rarity = defs.Epic
		out = append(out, it)

		if t.roll(p.BossLegendary * magicFind) {
			it := t.item(def.Name+"'s "+gearName(def.Rank), def.Rank, false)
			it.Rarity = defs.Legendary
			out = append(out, it)
		}
		if t.roll(p.TomeChance * magicFind) {
			it := t.item("Tome of "+def.Name, def.Rank, false)
			it.Rarity = defs.Legendary
			out = append(out, it)
		}
	}

	if def.HasTag("god") || def.HasTag("titan") {
		for i := 0; i < 3; i++ {
			it := t.item(gearName(defs.RankS), defs.RankS, false)
			it.Rarity = defs.Legendary
			out = append(out, it)
		}
		relic := t.item("Relic of "+def.Name, defs.RankSSS, false)
		relic.Rarity = defs.Artifact
		out = append(out, relic)
	}

	return out
}

// Chest rolls the contents of a container: two to five items at or one below rank,
// plus a chance of a bonus rare.
func (t *Table) Chest(rank defs.Rank, magicFind float64) []Item {
	count := 2 + t.rng.Intn(4)
	out := make([]Item, 0, count+1)
	for i := 0; i < count; i++ {
		r := rank
		if !t.roll(0.7) && r > defs.RankF {
			r--
		}
		out = append(out, t.item(gearName(r), r, false))
	}
	if t.roll(t.params.ChestBonus * magicFind) {
		it := t.item(gearName(rank), rank, false)
		it.Rarity = defs.Rare
		out = append(out, it)
	}
	return out
}

// Resource rolls the yield of a harvested node. Resources come identified.
func (t *Table) Resource(res defs.ResourceDef, yield float64) []Item {
	count := int(math.Floor(1 + t.rng.Next()*3*yield))
	out := make([]Item, count)
	for i := range out {
		out[i] = Item{
			ID:         t.newID(),
			Name:       "Raw " + res.Name,
			Rank:       res.Rank,
			Rarity:     res.Rarity,
			Identified: true,
		}
	}
	return out
}
