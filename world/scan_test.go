package world

import (
	"testing"
)

func TestScanSteps(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name       string
		current    RevealLevel
		efficiency float64
		debug      bool
		want       RevealLevel
	}{
		{"unknown to basic", Unknown, 0, false, Basic},
		{"basic blocked", Basic, 1.9, false, Basic},
		{"basic to detailed", Basic, 2.0, false, Detailed},
		{"detailed blocked", Detailed, 2.9, false, Detailed},
		{"detailed to complete", Detailed, 3.0, false, Complete},
		{"complete stays", Complete, 10, false, Complete},
		{"one stage per call", Unknown, 10, false, Basic},
		{"debug jumps", Unknown, 0, true, Complete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Scan(tt.current, tt.efficiency, tt.debug, th); got != tt.want {
				t.Errorf("Scan = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanMonotonic(t *testing.T) {
	th := DefaultThresholds()
	efficiencies := []float64{0, 0, 1, 1.5, 2, 2, 2.5, 3, 3, 5}
	level := Unknown
	for i, eff := range efficiencies {
		next := Scan(level, eff, false, th)
		if next < level {
			t.Fatalf("step %d: level fell from %v to %v", i, level, next)
		}
		level = next
	}
	if level != Complete {
		t.Errorf("final level = %v, want COMPLETE", level)
	}
}

func TestFogViewRedacts(t *testing.T) {
	w := Generate("fog", 16, testTables, nil, DefaultOptions())
	k := w.Keys()[0]
	fog := NewFog(DefaultThresholds())

	v := fog.View(w, k)
	if v.Level != Unknown || v.Biome != nil || v.Counts != nil || v.Chunk != nil {
		t.Fatalf("unknown view leaked data: %+v", v)
	}

	fog.Scan(w, k, 0)
	v = fog.View(w, k)
	if v.Level != Basic || v.Biome == nil || *v.Biome != w.Chunks[k].Biome || v.Counts != nil {
		t.Fatalf("basic view = %+v", v)
	}

	fog.Scan(w, k, 1) // below threshold
	if fog.Level(k) != Basic {
		t.Fatalf("sub-threshold scan changed level to %v", fog.Level(k))
	}

	fog.Scan(w, k, 2)
	v = fog.View(w, k)
	total := 0
	for _, n := range v.Counts {
		total += n
	}
	if v.Level != Detailed || total != len(w.Chunks[k].Entities) || v.Chunk != nil {
		t.Fatalf("detailed view = %+v", v)
	}

	fog.Scan(w, k, 3)
	v = fog.View(w, k)
	if v.Level != Complete || v.Chunk == nil || len(v.Chunk.Entities) != len(w.Chunks[k].Entities) {
		t.Fatalf("complete view = %+v", v)
	}
}

func TestFogDebugAndMissing(t *testing.T) {
	w := Generate("dev-fog", 8, testTables, nil, DefaultOptions())
	fog := NewFog(DefaultThresholds())
	k := w.Keys()[0]

	if got := fog.Scan(w, k, 0); got != Complete {
		t.Errorf("debug scan = %v, want COMPLETE", got)
	}
	if got := fog.Scan(w, Key{X: -5, Y: -5}, 10); got != Unknown {
		t.Errorf("scan of missing chunk = %v, want UNKNOWN", got)
	}
}
