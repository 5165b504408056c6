package defs

import (
	"fmt"
)

// Rank is the universal power tier, ordered F (lowest) to SSS.
type Rank uint8

const (
	RankF Rank = iota
	RankE
	RankD
	RankC
	RankB
	RankA
	RankS
	RankSS
	RankSSS
)

var rankNames = []string{"F", "E", "D", "C", "B", "A", "S", "SS", "SSS"}

// Ranks returns every rank in ascending order.
func Ranks() []Rank {
	out := make([]Rank, len(rankNames))
	for i := range out {
		out[i] = Rank(i)
	}
	return out
}

func (r Rank) String() string                { return enumString(rankNames, int(r), "Rank") }
func (r Rank) MarshalText() ([]byte, error)  { return []byte(r.String()), nil }
func (r *Rank) UnmarshalText(b []byte) error { return parseEnum(rankNames, "rank", b, (*uint8)(r)) }

// Rarity is the item/entity rarity tier, ordered SCRAP to ARTIFACT.
type Rarity uint8

const (
	Scrap Rarity = iota
	Common
	Uncommon
	Rare
	Epic
	Legendary
	Artifact
)

var rarityNames = []string{"SCRAP", "COMMON", "UNCOMMON", "RARE", "EPIC", "LEGENDARY", "ARTIFACT"}

func (r Rarity) String() string                { return enumString(rarityNames, int(r), "Rarity") }
func (r Rarity) MarshalText() ([]byte, error)  { return []byte(r.String()), nil }
func (r *Rarity) UnmarshalText(b []byte) error { return parseEnum(rarityNames, "rarity", b, (*uint8)(r)) }

// Genre is the flavor tag shared by chunks and mob definitions.
type Genre uint8

const (
	Fantasy Genre = iota
	SciFi
	PostApoc
	Eldritch
	Retro
)

var genreNames = []string{"FANTASY", "SCIFI", "POST_APOC", "ELDRITCH", "RETRO"}

func (g Genre) String() string                { return enumString(genreNames, int(g), "Genre") }
func (g Genre) MarshalText() ([]byte, error)  { return []byte(g.String()), nil }
func (g *Genre) UnmarshalText(b []byte) error { return parseEnum(genreNames, "genre", b, (*uint8)(g)) }

// Behavior is a mob's archetype.
type Behavior uint8

const (
	Passive Behavior = iota
	Neutral
	Aggressive
	Swarm
	Siege
	Turret
)

var behaviorNames = []string{"PASSIVE", "NEUTRAL", "AGGRESSIVE", "SWARM", "SIEGE", "TURRET"}

func (b Behavior) String() string                { return enumString(behaviorNames, int(b), "Behavior") }
func (b Behavior) MarshalText() ([]byte, error)  { return []byte(b.String()), nil }
func (b *Behavior) UnmarshalText(v []byte) error { return parseEnum(behaviorNames, "behavior", v, (*uint8)(b)) }

// Size is a mob's body class.
type Size uint8

const (
	Tiny Size = iota
	Medium
	Large
	Gigantic
	Colossal
)

var sizeNames = []string{"TINY", "MEDIUM", "LARGE", "GIGANTIC", "COLOSSAL"}

func (s Size) String() string                { return enumString(sizeNames, int(s), "Size") }
func (s Size) MarshalText() ([]byte, error)  { return []byte(s.String()), nil }
func (s *Size) UnmarshalText(b []byte) error { return parseEnum(sizeNames, "size", b, (*uint8)(s)) }

func enumString(names []string, i int, typ string) string {
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("%s(%d)", typ, i)
}

func parseEnum(names []string, what string, b []byte, out *uint8) error {
	s := string(b)
	for i, name := range names {
		if name == s {
			*out = uint8(i)
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q", what, s)
}
