package progression

import (
	"testing"

	"github.com/pthm-cable/rift/defs"
)

func TestKillXP(t *testing.T) {
	tests := []struct {
		name         string
		rank         defs.Rank
		rarity       defs.Rarity
		participants int
		want         int
	}{
		{"F common solo", defs.RankF, defs.Common, 1, 50},
		{"D rare solo", defs.RankD, defs.Rare, 1, 375},
		{"SSS artifact solo", defs.RankSSS, defs.Artifact, 1, 1000000},
		{"scrap halves", defs.RankE, defs.Scrap, 1, 50},
		{"zero participants counts as one", defs.RankF, defs.Common, 0, 50},
		{"two participants", defs.RankB, defs.Common, 2, 861}, // 1500 / 2^0.8
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KillXP(tt.rank, tt.rarity, tt.participants); got != tt.want {
				t.Errorf("KillXP = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLevels(t *testing.T) {
	if got := XPToNextLevel(1); got != 100 {
		t.Errorf("XPToNextLevel(1) = %d, want 100", got)
	}
	if got := XPForLevel(1); got != 0 {
		t.Errorf("XPForLevel(1) = %d, want 0", got)
	}
	if got := XPForLevel(3); got != XPToNextLevel(1)+XPToNextLevel(2) {
		t.Errorf("XPForLevel(3) = %d", got)
	}

	ranks := map[int]defs.Rank{1: defs.RankF, 10: defs.RankE, 50: defs.RankC, 99: defs.RankS, 150: defs.RankSSS}
	for level, want := range ranks {
		if got := RankForLevel(level); got != want {
			t.Errorf("RankForLevel(%d) = %v, want %v", level, got, want)
		}
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	if gained := tr.Add(99); gained != 0 || tr.Level != 1 {
		t.Fatalf("after 99 xp: level %d, gained %d", tr.Level, gained)
	}
	if gained := tr.Add(1); gained != 1 || tr.Level != 2 {
		t.Fatalf("after 100 xp: level %d, gained %d", tr.Level, gained)
	}
	if gained := tr.Add(-5); gained != 0 || tr.XP != 100 {
		t.Errorf("negative xp changed tracker: %+v", tr)
	}
	if tr.Rank() != defs.RankF {
		t.Errorf("Rank() = %v", tr.Rank())
	}
}
