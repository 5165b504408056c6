// Package progression computes kill rewards and observer levels.
package progression

import (
	"math"

	"github.com/pthm-cable/rift/defs"
)

const (
	baseLevelXP      = 100
	levelExponent    = 2.1
	groupBonusFactor = 0.8
)

var rankBaseXP = map[defs.Rank]float64{
	defs.RankF:   50,
	defs.RankE:   100,
	defs.RankD:   250,
	defs.RankC:   600,
	defs.RankB:   1500,
	defs.RankA:   4000,
	defs.RankS:   10000,
	defs.RankSS:  25000,
	defs.RankSSS: 100000,
}

var rarityMultiplier = map[defs.Rarity]float64{
	defs.Scrap:     0.5,
	defs.Common:    1.0,
	defs.Uncommon:  1.2,
	defs.Rare:      1.5,
	defs.Epic:      2.5,
	defs.Legendary: 5.0,
	defs.Artifact:  10.0,
}

// KillXP returns the experience awarded for a kill shared by participants.
func KillXP(rank defs.Rank, rarity defs.Rarity, participants int) int {
	base, ok := rankBaseXP[rank]
	if !ok {
		base = 50
	}
	mult, ok := rarityMultiplier[rarity]
	if !ok {
		mult = 1.0
	}
	denom := math.Pow(math.Max(1, float64(participants)), groupBonusFactor)
	return int(math.Floor(base * mult / denom))
}

// XPToNextLevel returns the experience needed to advance from level.
func XPToNextLevel(level int) int {
	return int(math.Floor(baseLevelXP * math.Pow(float64(level), levelExponent)))
}

// XPForLevel returns the cumulative experience needed to reach level.
func XPForLevel(level int) int {
	total := 0
	for i := 1; i < level; i++ {
		total += XPToNextLevel(i)
	}
	return total
}

// RankForLevel maps an observer level to its rank.
func RankForLevel(level int) defs.Rank {
	switch {
	case level < 10:
		return defs.RankF
	case level < 25:
		return defs.RankE
	case level < 45:
		return defs.RankD
	case level < 65:
		return defs.RankC
	case level < 80:
		return defs.RankB
	case level < 95:
		return defs.RankA
	case level < 100:
		return defs.RankS
	case level < 120:
		return defs.RankSS
	default:
		return defs.RankSSS
	}
}

// Calculator is the stock kill reward formula.
type Calculator struct{}

// KillXP implements the combat progression collaborator.
func (Calculator) KillXP(rank defs.Rank, rarity defs.Rarity, participants int) int {
	return KillXP(rank, rarity, participants)
}

// Tracker accumulates an observer's experience.
type Tracker struct {
	XP    int
	Level int
}

// NewTracker starts at level 1 with no experience.
func NewTracker() *Tracker {
	return &Tracker{Level: 1}
}

// Add grants xp and returns how many levels were gained.
func (t *Tracker) Add(xp int) int {
	if xp <= 0 {
		return 0
	}
	t.XP += xp
	gained := 0
	for t.XP >= XPForLevel(t.Level+1) {
		t.Level++
		gained++
	}
	return gained
}

// Rank returns the rank for the current level.
func (t *Tracker) Rank() defs.Rank {
	return RankForLevel(t.Level)
}
