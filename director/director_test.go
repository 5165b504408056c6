package director

import (
	"math"
	"sync"
	"testing"

	"github.com/pthm-cable/rift/rng"
	"github.com/pthm-cable/rift/traits"
)

func TestNewEqualWeights(t *testing.T) {
	d := NewDefault()
	for tr, w := range d.Weights() {
		if w != 1.0 {
			t.Errorf("%v weight = %v, want 1.0", tr, w)
		}
	}
	if len(d.Weights()) != 5 {
		t.Errorf("weights for %d traits, want 5", len(d.Weights()))
	}
}

func TestWeightClamp(t *testing.T) {
	d := NewDefault()
	lethal := traits.Of(traits.ArmoredShell)
	useless := traits.Of(traits.HiveMind)

	for cycle := 0; cycle < 50; cycle++ {
		for i := 0; i < 10; i++ {
			d.ReportSpawn(lethal)
			d.ReportPlayerDeath(lethal)
			d.ReportDeath(lethal, 60)

			d.ReportSpawn(useless)
			d.ReportDeath(useless, 0.5)
		}
		d.EvolveCycle()

		for tr, w := range d.Weights() {
			if w > 5.0 || w < 0.1 {
				t.Fatalf("cycle %d: %v weight %v outside [0.1, 5]", cycle, tr, w)
			}
		}
	}

	w := d.Weights()
	if w[traits.ArmoredShell] != 5.0 {
		t.Errorf("lethal trait weight = %v, want ceiling 5.0", w[traits.ArmoredShell])
	}
	if math.Abs(w[traits.HiveMind]-0.1) > 1e-12 {
		t.Errorf("useless trait weight = %v, want floor 0.1", w[traits.HiveMind])
	}
}

func TestEvolveCycleFitness(t *testing.T) {
	tests := []struct {
		name     string
		spawns   int
		kills    int
		lifespan float64
		want     float64
	}{
		{"neutral", 10, 0, 10, 1.0},
		{"lethal", 10, 2, 10, 1.5},
		{"broken", 10, 6, 10, 2.5},
		{"long lived", 10, 0, 25, 1.2},
		{"short lived", 10, 0, 2, 0.8},
		{"broken and long lived", 4, 4, 30, 2.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New([]traits.Trait{traits.AdrenalGlands}, DefaultParams())
			s := traits.Of(traits.AdrenalGlands)
			for i := 0; i < tt.spawns; i++ {
				d.ReportSpawn(s)
				d.ReportDeath(s, tt.lifespan)
			}
			for i := 0; i < tt.kills; i++ {
				d.ReportPlayerDeath(s)
			}

			report := d.EvolveCycle()
			row := report.Traits[0]
			if math.Abs(row.Fitness-tt.want) > 1e-9 {
				t.Errorf("fitness = %v, want %v", row.Fitness, tt.want)
			}
			if math.Abs(d.Weights()[traits.AdrenalGlands]-tt.want) > 1e-9 {
				t.Errorf("weight = %v, want %v", d.Weights()[traits.AdrenalGlands], tt.want)
			}
		})
	}
}

func TestEvolveCycleSkipsUnspawnedTraits(t *testing.T) {
	d := NewDefault()
	// Deaths without spawns still get cleared, but never move the weight.
	d.ReportDeath(traits.Of(traits.ExplosiveDeath), 1)
	d.ReportPlayerDeath(traits.Of(traits.ExplosiveDeath))

	before := d.Weights()
	report := d.EvolveCycle()
	after := d.Weights()

	for tr := range before {
		if before[tr] != after[tr] {
			t.Errorf("%v weight changed %v -> %v with zero spawns", tr, before[tr], after[tr])
		}
	}
	for _, row := range report.Traits {
		if row.Evolved {
			t.Errorf("%s marked evolved with zero spawns", row.Trait)
		}
	}
	if st := d.Stats()[traits.ExplosiveDeath]; st != (Stats{}) {
		t.Errorf("accumulator not reset: %+v", st)
	}

	// A second cycle with no data is a no-op as well.
	d.EvolveCycle()
	for tr, w := range d.Weights() {
		if w != before[tr] {
			t.Errorf("%v weight drifted to %v", tr, w)
		}
	}
	if d.Cycle() != 2 {
		t.Errorf("Cycle() = %d, want 2", d.Cycle())
	}
}

func TestEvolveCycleResetsAccumulators(t *testing.T) {
	d := NewDefault()
	s := traits.Of(traits.ArmoredShell, traits.HiveMind)
	d.ReportSpawn(s)
	d.ReportDeath(s, 12)

	d.EvolveCycle()
	for tr, st := range d.Stats() {
		if st != (Stats{}) {
			t.Errorf("%v accumulator = %+v after cycle", tr, st)
		}
	}
}

func TestAverageLifespanCountsDeathsOnly(t *testing.T) {
	d := New([]traits.Trait{traits.HiveMind}, DefaultParams())
	s := traits.Of(traits.HiveMind)
	d.ReportSpawn(s)
	d.ReportSpawn(s)
	d.ReportDeath(s, 1)
	d.ReportSurvival(s)

	st := d.Stats()[traits.HiveMind]
	if avg := st.AverageLifespan(); avg != 1 {
		t.Errorf("average lifespan = %v, want 1", avg)
	}
	if st.Deaths != 1 || st.Survivors != 1 {
		t.Errorf("deaths/survivors = %d/%d, want 1/1", st.Deaths, st.Survivors)
	}

	row := d.EvolveCycle().Traits[0]
	if row.Survivors != 1 || row.AvgLifespan != 1 {
		t.Errorf("report row = %+v", row)
	}
}

func TestSpawnsWithoutDeathsRateShortLived(t *testing.T) {
	d := New([]traits.Trait{traits.ArmoredShell}, DefaultParams())
	s := traits.Of(traits.ArmoredShell)
	for i := 0; i < 10; i++ {
		d.ReportSpawn(s)
	}
	d.ReportSurvival(s)

	row := d.EvolveCycle().Traits[0]
	if row.AvgLifespan != 0 {
		t.Errorf("average lifespan = %v, want 0", row.AvgLifespan)
	}
	if math.Abs(row.Fitness-0.8) > 1e-9 {
		t.Errorf("fitness = %v, want 0.8", row.Fitness)
	}
	if w := d.Weights()[traits.ArmoredShell]; math.Abs(w-0.8) > 1e-9 {
		t.Errorf("weight = %v, want 0.8", w)
	}
}

func TestSelectTraits(t *testing.T) {
	d := NewDefault()
	r := rng.New("director")

	counts := map[int]int{}
	for i := 0; i < 2000; i++ {
		picked := d.SelectTraits(r)
		counts[len(picked)]++
		if len(picked) == 2 && picked[0] == picked[1] {
			t.Fatalf("duplicate trait drawn: %v", picked)
		}
	}

	if counts[1]+counts[2] != 2000 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	// Expect roughly 20% doubles.
	frac := float64(counts[2]) / 2000
	if frac < 0.15 || frac > 0.25 {
		t.Errorf("two-trait fraction = %v, want about 0.2", frac)
	}
}

func TestSelectTraitsFollowsWeights(t *testing.T) {
	p := DefaultParams()
	p.SecondTraitDraw = 1.0 // always one trait
	d := New([]traits.Trait{traits.ArmoredShell, traits.HiveMind}, p)
	d.weights[traits.ArmoredShell] = 4.0

	r := rng.New("weights")
	hits := 0
	for i := 0; i < 1000; i++ {
		if d.SelectTraits(r)[0] == traits.ArmoredShell {
			hits++
		}
	}
	if hits < 730 || hits > 870 {
		t.Errorf("heavy trait drawn %d/1000 times, want about 800", hits)
	}
}

func TestSelectTraitsDeterministic(t *testing.T) {
	a := NewDefault().SelectTraits(rng.New("same"))
	b := NewDefault().SelectTraits(rng.New("same"))
	if len(a) != len(b) {
		t.Fatalf("different counts: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("draw %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestConcurrentReports(t *testing.T) {
	d := NewDefault()
	s := traits.Of(traits.AdrenalGlands)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d.ReportSpawn(s)
			}
		}()
	}
	wg.Wait()

	if got := d.Stats()[traits.AdrenalGlands].Spawns; got != 800 {
		t.Errorf("spawns = %d, want 800", got)
	}
}

func TestWeightedIndex(t *testing.T) {
	w := []float64{1, 2, 3}
	tests := []struct {
		target float64
		want   int
	}{
		{0, 0},
		{1, 0},
		{1.5, 1},
		{3, 1},
		{3.1, 2},
		{6.5, 2},
	}
	for _, tt := range tests {
		if got := weightedIndex(w, tt.target); got != tt.want {
			t.Errorf("weightedIndex(%v) = %d, want %d", tt.target, got, tt.want)
		}
	}
}
