// Package director evolves which mob traits future worlds favour.
//
// Each generation draws its traits by weight. Sessions report how mobs carrying each
// trait fared, and an evolution cycle turns those reports into new weights. Weights
// live for the process; reports reset every cycle.
package director

import (
	"log/slog"
	"slices"

	"github.com/sasha-s/go-deadlock"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/rift/config"
	"github.com/pthm-cable/rift/rng"
	"github.com/pthm-cable/rift/traits"
)

// Params holds the evolution constants.
type Params struct {
	InitialWeight   float64
	MinWeight       float64
	MaxWeight       float64
	SecondTraitDraw float64
	LethalKillRate  float64
	LethalBonus     float64
	BrokenKillRate  float64
	BrokenBonus     float64
	LongLifespan    float64
	LongBonus       float64
	ShortLifespan   float64
	ShortPenalty    float64
}

// DefaultParams returns the stock evolution constants.
func DefaultParams() Params {
	return Params{
		InitialWeight:   1.0,
		MinWeight:       0.1,
		MaxWeight:       5.0,
		SecondTraitDraw: 0.8,
		LethalKillRate:  0.1,
		LethalBonus:     0.5,
		BrokenKillRate:  0.5,
		BrokenBonus:     1.0,
		LongLifespan:    20,
		LongBonus:       0.2,
		ShortLifespan:   5,
		ShortPenalty:    0.2,
	}
}

// ParamsFromConfig extracts evolution constants from the loaded configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	c := cfg.Director
	return Params{
		InitialWeight:   c.InitialWeight,
		MinWeight:       c.MinWeight,
		MaxWeight:       c.MaxWeight,
		SecondTraitDraw: c.SecondTraitDraw,
		LethalKillRate:  c.LethalKillRate,
		LethalBonus:     c.LethalBonus,
		BrokenKillRate:  c.BrokenKillRate,
		BrokenBonus:     c.BrokenBonus,
		LongLifespan:    c.LongLifespan,
		LongBonus:       c.LongBonus,
		ShortLifespan:   c.ShortLifespan,
		ShortPenalty:    c.ShortPenalty,
	}
}

// Stats accumulates one trait's outcomes during a cycle.
type Stats struct {
	Spawns      int
	PlayerKills int
	Deaths      int
	Survivors   int     // Still alive when their session ended
	Lifespan    float64 // Cumulative seconds across Deaths
}

// KillRate returns player kills per spawn.
func (s Stats) KillRate() float64 {
	if s.Spawns == 0 {
		return 0
	}
	return float64(s.PlayerKills) / float64(s.Spawns)
}

// AverageLifespan returns mean seconds alive per death. It is zero until a mob
// carrying the trait has died, which rates the trait as short-lived.
func (s Stats) AverageLifespan() float64 {
	if s.Deaths == 0 {
		return 0
	}
	return s.Lifespan / float64(s.Deaths)
}

// Director holds trait weights and the current cycle's accumulators.
// All methods are safe for concurrent use.
type Director struct {
	mu      deadlock.Mutex
	params  Params
	order   []traits.Trait
	weights map[traits.Trait]float64
	stats   map[traits.Trait]*Stats
	cycle   int
}

// New creates a director over the given traits with equal weights.
func New(ids []traits.Trait, params Params) *Director {
	d := &Director{
		params:  params,
		order:   slices.Clone(ids),
		weights: make(map[traits.Trait]float64, len(ids)),
		stats:   make(map[traits.Trait]*Stats, len(ids)),
	}
	for _, t := range ids {
		d.weights[t] = params.InitialWeight
		d.stats[t] = &Stats{}
	}
	return d
}

// NewDefault creates a director over every trait with stock constants.
func NewDefault() *Director {
	return New(traits.All(), DefaultParams())
}

// each calls fn for the accumulator of every known trait in s.
func (d *Director) each(s traits.Set, fn func(*Stats)) {
	for _, t := range s.Traits() {
		if st, ok := d.stats[t]; ok {
			fn(st)
		}
	}
}

// ReportSpawn records that a mob carrying s entered a world.
func (d *Director) ReportSpawn(s traits.Set) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.each(s, func(st *Stats) { st.Spawns++ })
}

// ReportDeath records that a mob carrying s died after lifespan seconds.
func (d *Director) ReportDeath(s traits.Set, lifespan float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.each(s, func(st *Stats) {
		st.Deaths++
		st.Lifespan += lifespan
	})
}

// ReportSurvival records that a mob carrying s was still alive when its session
// ended. Survivors are counted but do not move the average lifespan.
func (d *Director) ReportSurvival(s traits.Set) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.each(s, func(st *Stats) { st.Survivors++ })
}

// ReportPlayerDeath records that a mob carrying s killed the observer.
func (d *Director) ReportPlayerDeath(s traits.Set) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.each(s, func(st *Stats) { st.PlayerKills++ })
}

// SelectTraits draws one or two distinct traits by weight. The first draw decides
// the count; each pick then consumes one draw.
func (d *Director) SelectTraits(r *rng.Generator) []traits.Trait {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.order) == 0 {
		return nil
	}

	count := 1
	if r.Next() > d.params.SecondTraitDraw {
		count = 2
	}

	pool := slices.Clone(d.order)
	var picked []traits.Trait
	for i := 0; i < count && len(pool) > 0; i++ {
		w := make([]float64, len(pool))
		for j, t := range pool {
			w[j] = d.weights[t]
		}

		idx := weightedIndex(w, r.Next()*floats.Sum(w))
		picked = append(picked, pool[idx])
		pool = slices.Delete(pool, idx, idx+1)
	}
	return picked
}

// weightedIndex walks w subtracting weights from target and returns the first index
// that brings it to zero. Rounding leftovers land on the last index.
func weightedIndex(w []float64, target float64) int {
	for i, wi := range w {
		target -= wi
		if target <= 0 {
			return i
		}
	}
	return len(w) - 1
}

// TraitReport is one trait's row of an evolution cycle.
type TraitReport struct {
	Cycle       int     `csv:"cycle" json:"cycle"`
	Trait       string  `csv:"trait" json:"trait"`
	Spawns      int     `csv:"spawns" json:"spawns"`
	PlayerKills int     `csv:"player_kills" json:"player_kills"`
	Deaths      int     `csv:"deaths" json:"deaths"`
	Survivors   int     `csv:"survivors" json:"survivors"`
	KillRate    float64 `csv:"kill_rate" json:"kill_rate"`
	AvgLifespan float64 `csv:"avg_lifespan" json:"avg_lifespan"`
	Fitness     float64 `csv:"fitness" json:"fitness"`
	OldWeight   float64 `csv:"old_weight" json:"old_weight"`
	NewWeight   float64 `csv:"new_weight" json:"new_weight"`
	Evolved     bool    `csv:"evolved" json:"evolved"`
}

// CycleReport summarizes one evolution cycle.
type CycleReport struct {
	Cycle  int
	Traits []TraitReport
}

// EvolveCycle converts this cycle's reports into new weights and resets every
// accumulator. Traits that never spawned keep their weight.
func (d *Director) EvolveCycle() CycleReport {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cycle++
	report := CycleReport{Cycle: d.cycle}
	p := d.params

	for _, t := range d.order {
		st := d.stats[t]
		old := d.weights[t]
		row := TraitReport{
			Cycle:       d.cycle,
			Trait:       t.String(),
			Spawns:      st.Spawns,
			PlayerKills: st.PlayerKills,
			Deaths:      st.Deaths,
			Survivors:   st.Survivors,
			KillRate:    st.KillRate(),
			AvgLifespan: st.AverageLifespan(),
			Fitness:     1.0,
			OldWeight:   old,
			NewWeight:   old,
		}
		if st.Spawns > 0 {
			fitness := 1.0
			if row.KillRate > p.LethalKillRate {
				fitness += p.LethalBonus
			}
			if row.KillRate > p.BrokenKillRate {
				fitness += p.BrokenBonus
			}
			if row.AvgLifespan > p.LongLifespan {
				fitness += p.LongBonus
			}
			if row.AvgLifespan < p.ShortLifespan {
				fitness -= p.ShortPenalty
			}

			w := clamp(old*fitness, p.MinWeight, p.MaxWeight)
			d.weights[t] = w
			row.Fitness = fitness
			row.NewWeight = w
			row.Evolved = true

			slog.Info("trait_evolved",
				"cycle", d.cycle,
				"trait", row.Trait,
				"fitness", fitness,
				"weight", w,
			)
		}

		*st = Stats{}
		report.Traits = append(report.Traits, row)
	}

	w := d.weightVector()
	if len(w) > 0 {
		slog.Info("evolution_cycle",
			"cycle", d.cycle,
			"weight_min", floats.Min(w),
			"weight_max", floats.Max(w),
			"weight_total", floats.Sum(w),
		)
	}

	return report
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (d *Director) weightVector() []float64 {
	w := make([]float64, len(d.order))
	for i, t := range d.order {
		w[i] = d.weights[t]
	}
	return w
}

// Weights returns a snapshot of the current weights.
func (d *Director) Weights() map[traits.Trait]float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[traits.Trait]float64, len(d.weights))
	for t, w := range d.weights {
		out[t] = w
	}
	return out
}

// Stats returns a snapshot of the current cycle's accumulators.
func (d *Director) Stats() map[traits.Trait]Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[traits.Trait]Stats, len(d.stats))
	for t, st := range d.stats {
		out[t] = *st
	}
	return out
}

// Cycle returns how many evolution cycles have run.
func (d *Director) Cycle() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cycle
}
