package combat

import (
	"log/slog"

	"github.com/pthm-cable/rift/defs"
	"github.com/pthm-cable/rift/geom"
	"github.com/pthm-cable/rift/loot"
	"github.com/pthm-cable/rift/traits"
)

// EventKind discriminates combat events.
type EventKind uint8

const (
	EventHit EventKind = iota
	EventKill
	EventLootSpawn
	EventPlayerDamage
	EventAction
)

var eventNames = [...]string{"HIT", "KILL", "LOOT_SPAWN", "PLAYER_DAMAGE", "ACTION"}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "UNKNOWN"
}

func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Event is one resolved combat interaction. Consumers type-switch on the concrete
// variants below.
type Event interface {
	Kind() EventKind
}

// Source is what dealt a hit.
type Source uint8

const (
	FromProjectile Source = iota
	FromMelee
)

func (s Source) String() string {
	if s == FromMelee {
		return "melee"
	}
	return "projectile"
}

func (s Source) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Hit is damage dealt to a mob.
type Hit struct {
	EntityID string   `json:"entity_id"`
	Damage   float64  `json:"damage"`
	Position geom.Vec `json:"position"`
	Source   Source   `json:"source"`
}

// Kill is a mob brought to non-positive health.
type Kill struct {
	EntityID     string      `json:"entity_id"`
	DefinitionID string      `json:"definition_id"`
	XP           int         `json:"xp"`
	Rank         defs.Rank   `json:"rank"`
	Rarity       defs.Rarity `json:"rarity"`
	Position     geom.Vec    `json:"position"`
	Traits       traits.Set  `json:"traits"`
	Source       Source      `json:"source"`
}

// LootSpawn is a drop left by a kill.
type LootSpawn struct {
	Drop Drop `json:"drop"`
}

// PlayerDamage is damage dealt to the observer.
type PlayerDamage struct {
	EntityID string     `json:"entity_id"` // Mob responsible
	Damage   float64    `json:"damage"`
	Traits   traits.Set `json:"traits"`
	Cause    string     `json:"cause"` // "contact", "projectile" or "blast"
}

// Action is a tagged log entry for skill bookkeeping outside the core.
type Action struct {
	Tags      []string `json:"tags"`
	Magnitude float64  `json:"magnitude"`
}

func (Hit) Kind() EventKind          { return EventHit }
func (Kill) Kind() EventKind         { return EventKill }
func (LootSpawn) Kind() EventKind    { return EventLootSpawn }
func (PlayerDamage) Kind() EventKind { return EventPlayerDamage }
func (Action) Kind() EventKind       { return EventAction }

// LogValue implements slog.LogValuer.
func (k Kill) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("entity", k.EntityID),
		slog.String("def", k.DefinitionID),
		slog.Int("xp", k.XP),
		slog.String("rank", k.Rank.String()),
		slog.String("traits", k.Traits.String()),
	)
}

var (
	rangedTags  = []string{"ranged", "projectile", "tech", "precision"}
	meleeTags   = []string{"melee", "physical", "violence", "blade"}
	defenseTags = []string{"defense", "pain", "durability"}
)

// Drop is a loot bundle lying in the world.
type Drop struct {
	ID       string      `json:"id"`
	Position geom.Vec    `json:"position"`
	Items    []loot.Item `json:"items"`
}

// Pickup partitions drops by distance from the observer. Items from drops strictly
// inside radius are returned flattened; the rest of the drops are returned untouched.
func Pickup(observer geom.Vec, drops []Drop, radius float64) ([]loot.Item, []Drop) {
	var picked []loot.Item
	var remaining []Drop
	for _, d := range drops {
		if geom.Distance(observer, d.Position) < radius {
			picked = append(picked, d.Items...)
		} else {
			remaining = append(remaining, d)
		}
	}
	return picked, remaining
}
