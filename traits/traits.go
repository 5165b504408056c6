// Package traits defines the mob mutations the director evolves and what they do.
package traits

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Trait is a single mob mutation. Traits combine into a Set.
type Trait uint8

const (
	ArmoredShell    Trait = 1 << iota // Hardened carapace, more health
	AblativeCoating                   // Sacrificial plating, some extra health
	AdrenalGlands                     // Faster movement
	HiveMind                          // Wakes from further away
	ExplosiveDeath                    // Bursts when killed
)

var all = []Trait{ArmoredShell, AblativeCoating, AdrenalGlands, HiveMind, ExplosiveDeath}

var names = map[Trait]string{
	ArmoredShell:    "ARMORED_SHELL",
	AblativeCoating: "ABLATIVE_COATING",
	AdrenalGlands:   "ADRENAL_GLANDS",
	HiveMind:        "HIVE_MIND",
	ExplosiveDeath:  "EXPLOSIVE_DEATH",
}

// All returns every trait in stable order.
func All() []Trait {
	out := make([]Trait, len(all))
	copy(out, all)
	return out
}

func (t Trait) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("Trait(%d)", uint8(t))
}

// Parse maps a trait name back to its Trait.
func Parse(s string) (Trait, bool) {
	for t, n := range names {
		if n == s {
			return t, true
		}
	}
	return 0, false
}

// Set is a combination of traits.
type Set uint8

// Of builds a set from individual traits.
func Of(ts ...Trait) Set {
	var s Set
	for _, t := range ts {
		s = s.Add(t)
	}
	return s
}

// Has checks if the set contains a trait.
func (s Set) Has(t Trait) bool {
	return s&Set(t) != 0
}

// Add adds a trait to the set.
func (s Set) Add(t Trait) Set {
	return s | Set(t)
}

// Remove removes a trait from the set.
func (s Set) Remove(t Trait) Set {
	return s &^ Set(t)
}

// Traits lists the set's members in stable order.
func (s Set) Traits() []Trait {
	var out []Trait
	for _, t := range all {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// Names returns the member names in stable order.
func (s Set) Names() []string {
	var out []string
	for _, t := range s.Traits() {
		out = append(out, t.String())
	}
	return out
}

func (s Set) String() string {
	return strings.Join(s.Names(), "|")
}

// MarshalJSON encodes the set as a list of names.
func (s Set) MarshalJSON() ([]byte, error) {
	n := s.Names()
	if n == nil {
		n = []string{}
	}
	return json.Marshal(n)
}

// Effects holds the spawn and runtime modifiers of a trait set.
type Effects struct {
	HealthMultiplier float64 // Applied to base health at spawn
	SpeedMultiplier  float64 // Applied to movement speed
	WakeMultiplier   float64 // Applied to the wake distance
	DeathBlast       bool    // Damages the observer nearby on death
}

// GetEffects returns the combined modifiers of a trait set.
func GetEffects(s Set) Effects {
	e := Effects{
		HealthMultiplier: 1.0,
		SpeedMultiplier:  1.0,
		WakeMultiplier:   1.0,
	}

	if s.Has(ArmoredShell) {
		e.HealthMultiplier *= 1.5
	}
	if s.Has(AblativeCoating) {
		e.HealthMultiplier *= 1.25
	}
	if s.Has(AdrenalGlands) {
		e.SpeedMultiplier = 1.5
	}
	if s.Has(HiveMind) {
		e.WakeMultiplier = 1.5
	}
	e.DeathBlast = s.Has(ExplosiveDeath)

	return e
}

// HealthMultiplier returns the spawn health modifier of a trait set.
func HealthMultiplier(s Set) float64 {
	return GetEffects(s).HealthMultiplier
}
