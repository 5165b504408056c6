// Package defs loads the mob and resource definition tables the world is built from.
//
// Tables ship embedded as YAML and are validated against JSON schemas at load time;
// a malformed table is the only error the simulation core can produce.
package defs

import (
	"slices"
)

// Capability is an explicit ability flag on a mob definition.
type Capability string

const (
	CapMelee  Capability = "melee"
	CapRanged Capability = "ranged"
)

// MobDef describes one kind of mob.
type MobDef struct {
	ID           string       `yaml:"id" json:"id"`
	Name         string       `yaml:"name" json:"name"`
	Genre        Genre        `yaml:"genre" json:"genre"`
	Tags         []string     `yaml:"tags" json:"tags"`
	Rank         Rank         `yaml:"rank" json:"rank"`
	Size         Size         `yaml:"size" json:"size"`
	Behavior     Behavior     `yaml:"behavior" json:"behavior"`
	BaseHealth   float64      `yaml:"base_health" json:"base_health"`
	BaseDamage   float64      `yaml:"base_damage" json:"base_damage"`
	Speed        float64      `yaml:"speed" json:"speed"`
	ViewRange    float64      `yaml:"view_range" json:"view_range"`
	Capabilities []Capability `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`
}

// HasTag reports whether the definition carries tag.
func (d *MobDef) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// Can reports whether the definition has capability c.
func (d *MobDef) Can(c Capability) bool {
	return slices.Contains(d.Capabilities, c)
}

// normalize folds legacy signals into the capability list so consumers only ever
// consult Capabilities.
func (d *MobDef) normalize() {
	add := func(c Capability) {
		if !d.Can(c) {
			d.Capabilities = append(d.Capabilities, c)
		}
	}
	add(CapMelee)
	if d.HasTag("ranged") || d.Genre == SciFi || d.Behavior == Turret {
		add(CapRanged)
	}
}

// HarvestConfig describes what it takes to gather a resource node.
type HarvestConfig struct {
	RequiredToolTags []string `yaml:"required_tool_tags" json:"required_tool_tags"`
	MinToolPower     float64  `yaml:"min_tool_power" json:"min_tool_power"`
	EnergyCost       float64  `yaml:"energy_cost" json:"energy_cost"`
	BaseTime         float64  `yaml:"base_time" json:"base_time"` // Seconds
}

// ResourceDef describes a harvestable resource node.
type ResourceDef struct {
	ID      string         `yaml:"id" json:"id"`
	Name    string         `yaml:"name" json:"name"`
	Rank    Rank           `yaml:"rank" json:"rank"`
	Rarity  Rarity         `yaml:"rarity" json:"rarity"`
	Weight  float64        `yaml:"weight" json:"weight"`
	Harvest *HarvestConfig `yaml:"harvest,omitempty" json:"harvest,omitempty"`
}

// SpawnEntry is one band of a biome's resource roll. The entry is chosen when the
// roll is below Below and above every earlier entry.
type SpawnEntry struct {
	ID    string  `yaml:"id" json:"id"`
	Below float64 `yaml:"below" json:"below"`
}

// SpawnTable is a biome's resource placement rule.
type SpawnTable struct {
	Density float64      `yaml:"density" json:"density"` // Chance a chunk gets any nodes
	Nodes   []SpawnEntry `yaml:"nodes" json:"nodes"`
}

// Choose maps a roll in [0,1) to a resource id. The last entry catches anything left.
func (t SpawnTable) Choose(roll float64) string {
	for _, n := range t.Nodes {
		if roll < n.Below {
			return n.ID
		}
	}
	if len(t.Nodes) == 0 {
		return ""
	}
	return t.Nodes[len(t.Nodes)-1].ID
}

// Tables is a loaded, validated set of definitions.
type Tables struct {
	mobs      []MobDef
	mobIndex  map[string]int
	resources map[string]ResourceDef
	spawns    map[string]SpawnTable
	fallback  SpawnTable
}

// Mob returns the definition with the given id.
func (t *Tables) Mob(id string) (*MobDef, bool) {
	i, ok := t.mobIndex[id]
	if !ok {
		return nil, false
	}
	return &t.mobs[i], true
}

// Mobs returns every mob definition in table order.
func (t *Tables) Mobs() []*MobDef {
	out := make([]*MobDef, len(t.mobs))
	for i := range t.mobs {
		out[i] = &t.mobs[i]
	}
	return out
}

// MobsOfGenre returns the mob definitions of genre g in table order.
func (t *Tables) MobsOfGenre(g Genre) []*MobDef {
	var out []*MobDef
	for i := range t.mobs {
		if t.mobs[i].Genre == g {
			out = append(out, &t.mobs[i])
		}
	}
	return out
}

// Resource returns the resource definition with the given id.
func (t *Tables) Resource(id string) (ResourceDef, bool) {
	r, ok := t.resources[id]
	return r, ok
}

// ResourceSpawn returns the placement rule for a biome, or the default rule.
func (t *Tables) ResourceSpawn(biome string) SpawnTable {
	if s, ok := t.spawns[biome]; ok {
		return s
	}
	return t.fallback
}
