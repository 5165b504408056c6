package world

import (
	"fmt"

	"github.com/pthm-cable/rift/config"
	"github.com/pthm-cable/rift/defs"
)

// RevealLevel is how much of a chunk a viewer may see.
type RevealLevel uint8

const (
	Unknown  RevealLevel = iota // Nothing
	Basic                       // Biome and difficulty
	Detailed                    // Entity counts
	Complete                    // Full server truth
)

var revealNames = []string{"UNKNOWN", "BASIC", "DETAILED", "COMPLETE"}

func (r RevealLevel) String() string {
	if int(r) < len(revealNames) {
		return revealNames[r]
	}
	return fmt.Sprintf("RevealLevel(%d)", r)
}

func (r RevealLevel) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// Thresholds are the minimum scan efficiency needed to reach each level.
type Thresholds struct {
	Basic    float64
	Detailed float64
	Complete float64
}

// DefaultThresholds returns the stock scan thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Basic: 0, Detailed: 2.0, Complete: 3.0}
}

// ThresholdsFromConfig extracts scan thresholds from the loaded configuration.
func ThresholdsFromConfig(cfg *config.Config) Thresholds {
	return Thresholds{
		Basic:    cfg.Scan.Basic,
		Detailed: cfg.Scan.Detailed,
		Complete: cfg.Scan.Complete,
	}
}

func (t Thresholds) required(level RevealLevel) float64 {
	switch level {
	case Basic:
		return t.Basic
	case Detailed:
		return t.Detailed
	default:
		return t.Complete
	}
}

// Scan advances a reveal level by at most one stage. Efficiency below the next
// stage's threshold leaves the level unchanged; debug worlds jump straight to
// Complete. The result is never lower than current.
func Scan(current RevealLevel, efficiency float64, debug bool, t Thresholds) RevealLevel {
	if current >= Complete {
		return Complete
	}
	if debug {
		return Complete
	}
	next := current + 1
	if efficiency < t.required(next) {
		return current
	}
	return next
}

// ChunkView is the part of a chunk a viewer is allowed to see.
type ChunkView struct {
	Key        Key                `json:"key"`
	Level      RevealLevel        `json:"level"`
	Biome      *Biome             `json:"biome,omitempty"`
	Difficulty *defs.Rank         `json:"difficulty,omitempty"`
	Counts     map[EntityKind]int `json:"counts,omitempty"`
	Chunk      *Chunk             `json:"chunk,omitempty"`
}

// Fog tracks one viewer's reveal level per chunk.
type Fog struct {
	levels     map[Key]RevealLevel
	thresholds Thresholds
}

// NewFog creates a fog where every chunk starts Unknown.
func NewFog(t Thresholds) *Fog {
	return &Fog{levels: make(map[Key]RevealLevel), thresholds: t}
}

// Level returns the viewer's reveal level for k.
func (f *Fog) Level(k Key) RevealLevel {
	return f.levels[k]
}

// Scan applies one scan of chunk k and returns the resulting level.
// Scanning a key with no chunk does nothing.
func (f *Fog) Scan(w *World, k Key, efficiency float64) RevealLevel {
	if _, ok := w.Chunks[k]; !ok {
		return Unknown
	}
	level := Scan(f.levels[k], efficiency, w.Debug, f.thresholds)
	f.levels[k] = level
	return level
}

// Reveal raises k to at least level without a threshold check.
func (f *Fog) Reveal(k Key, level RevealLevel) {
	if level > f.levels[k] {
		f.levels[k] = level
	}
}

// View redacts the server truth for k down to the viewer's level.
func (f *Fog) View(w *World, k Key) ChunkView {
	v := ChunkView{Key: k, Level: f.levels[k]}
	c, ok := w.Chunks[k]
	if !ok {
		v.Level = Unknown
		return v
	}

	if v.Level >= Basic {
		biome, diff := c.Biome, c.Difficulty
		v.Biome = &biome
		v.Difficulty = &diff
	}
	if v.Level >= Detailed {
		v.Counts = make(map[EntityKind]int)
		for _, e := range c.Entities {
			v.Counts[e.Kind]++
		}
	}
	if v.Level >= Complete {
		full := c.Clone()
		v.Chunk = &full
	}
	return v
}
