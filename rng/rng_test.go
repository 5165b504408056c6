package rng

import (
	"testing"
)

func TestHashMatchesFNV1a(t *testing.T) {
	tests := []struct {
		seed string
		want uint32
	}{
		{"", 0x811c9dc5},
		{"a", 0xe40c292c},
		{"foobar", 0xbf9cf968},
	}

	for _, tt := range tests {
		t.Run(tt.seed, func(t *testing.T) {
			if got := Hash(tt.seed); got != tt.want {
				t.Errorf("Hash(%q) = %#x, want %#x", tt.seed, got, tt.want)
			}
		})
	}
}

func TestNextRecurrence(t *testing.T) {
	g := New("")
	state := uint32(0x811c9dc5)
	for i := 0; i < 100; i++ {
		state = state*1664525 + 1013904223
		want := float64(state) / 4294967296.0
		if got := g.Next(); got != want {
			t.Fatalf("draw %d = %v, want %v", i, got, want)
		}
	}
	if g.Calls() != 100 {
		t.Errorf("Calls() = %d, want 100", g.Calls())
	}
}

func TestSameSeedSameSequence(t *testing.T) {
	a := New("abc")
	b := New("abc")
	for i := 0; i < 1000; i++ {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("draw %d diverged: %v vs %v", i, x, y)
		}
	}
}

func TestSingleCharacterSeedsDiverge(t *testing.T) {
	a := New("abc")
	b := New("abd")
	same := 0
	for i := 0; i < 100; i++ {
		if a.Next() == b.Next() {
			same++
		}
	}
	if same > 0 {
		t.Errorf("%d of 100 draws matched between neighbouring seeds", same)
	}
}

func TestBounds(t *testing.T) {
	g := New("bounds")
	for i := 0; i < 10000; i++ {
		v := g.Next()
		if v < 0 || v >= 1 {
			t.Fatalf("Next() = %v, outside [0,1)", v)
		}
		r := g.Range(10, 90)
		if r < 10 || r >= 90 {
			t.Fatalf("Range(10, 90) = %v", r)
		}
		n := g.Intn(7)
		if n < 0 || n >= 7 {
			t.Fatalf("Intn(7) = %d", n)
		}
	}
}

func TestPick(t *testing.T) {
	g := New("pick")
	items := []string{"a", "b", "c"}
	seen := map[string]bool{}
	for i := 0; i < 300; i++ {
		seen[Pick(g, items)] = true
	}
	if len(seen) != 3 {
		t.Errorf("picked %d distinct items, want 3", len(seen))
	}

	before := g.Calls()
	if got := Pick(g, []int(nil)); got != 0 {
		t.Errorf("Pick(empty) = %d, want 0", got)
	}
	if g.Calls() != before {
		t.Error("Pick(empty) advanced the sequence")
	}
}
