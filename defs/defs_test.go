package defs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEmbedded(t *testing.T) {
	tables, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	rat, ok := tables.Mob("mob_fantasy_rat")
	if !ok {
		t.Fatal("mob_fantasy_rat missing")
	}
	if rat.Rank != RankF || rat.Genre != Fantasy || rat.Behavior != Swarm {
		t.Errorf("rat = %v/%v/%v, want F/FANTASY/SWARM", rat.Rank, rat.Genre, rat.Behavior)
	}
	if rat.BaseHealth != 20 || rat.BaseDamage != 5 {
		t.Errorf("rat health/damage = %v/%v, want 20/5", rat.BaseHealth, rat.BaseDamage)
	}

	if _, ok := tables.Resource("res_tree_log"); !ok {
		t.Error("res_tree_log missing")
	}
}

func TestCapabilityNormalization(t *testing.T) {
	tables := MustLoad()

	tests := []struct {
		id     string
		ranged bool
	}{
		{"mob_fantasy_rat", false},
		{"mob_fantasy_orc", false},
		{"mob_scifi_drone", true},     // genre
		{"mob_scifi_mech", true},      // genre and turret
		{"mob_postapoc_gunner", true}, // tag
		{"mob_eldritch_shambler", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			d, ok := tables.Mob(tt.id)
			if !ok {
				t.Fatalf("%s missing", tt.id)
			}
			if got := d.Can(CapRanged); got != tt.ranged {
				t.Errorf("Can(ranged) = %v, want %v", got, tt.ranged)
			}
			if !d.Can(CapMelee) {
				t.Error("every mob should be melee capable")
			}
		})
	}
}

func TestMobsOfGenreKeepsTableOrder(t *testing.T) {
	tables := MustLoad()

	got := tables.MobsOfGenre(Fantasy)
	want := []string{"mob_fantasy_rat", "mob_fantasy_orc", "mob_fantasy_dragon", "boss_fantasy_tarrasque"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, d := range got {
		if d.ID != want[i] {
			t.Errorf("[%d] = %s, want %s", i, d.ID, want[i])
		}
	}

	if len(tables.MobsOfGenre(Retro)) != 0 {
		t.Error("no RETRO mobs are defined")
	}
}

func TestResourceSpawn(t *testing.T) {
	tables := MustLoad()

	tests := []struct {
		biome string
		roll  float64
		want  string
	}{
		{"OVERGROWTH", 0.1, "res_tree_log"},
		{"OVERGROWTH", 0.5, "res_plant_fiber"},
		{"OVERGROWTH", 0.9, "res_berry_bush"},
		{"INDUSTRIAL", 0.49, "res_scrap_metal"},
		{"INDUSTRIAL", 0.5, "res_glass_shards"},
		{"RUINS", 0.3, "res_rock_small"},
		{"WASTELAND", 0.99, "res_rock_small"},
	}

	for _, tt := range tests {
		t.Run(tt.biome, func(t *testing.T) {
			if got := tables.ResourceSpawn(tt.biome).Choose(tt.roll); got != tt.want {
				t.Errorf("Choose(%v) = %s, want %s", tt.roll, got, tt.want)
			}
		})
	}

	if d := tables.ResourceSpawn("OVERGROWTH").Density; d != 0.8 {
		t.Errorf("OVERGROWTH density = %v, want 0.8", d)
	}
	if d := tables.ResourceSpawn("RUINS").Density; d != 0.4 {
		t.Errorf("RUINS density = %v, want 0.4", d)
	}
}

func TestLoadFileRejectsMalformedTables(t *testing.T) {
	dir := t.TempDir()
	resources, err := dataFS.ReadFile("data/resources.yaml")
	if err != nil {
		t.Fatal(err)
	}
	resPath := filepath.Join(dir, "resources.yaml")
	if err := os.WriteFile(resPath, resources, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		mobs string
		want string
	}{
		{
			"unknown rank",
			"mobs:\n  - {id: x, name: X, genre: FANTASY, tags: [], rank: Z, size: TINY, behavior: SWARM, base_health: 1, base_damage: 1, speed: 1, view_range: 1}\n",
			"validating mob table",
		},
		{
			"missing health",
			"mobs:\n  - {id: x, name: X, genre: FANTASY, tags: [], rank: F, size: TINY, behavior: SWARM, base_damage: 1, speed: 1, view_range: 1}\n",
			"validating mob table",
		},
		{
			"duplicate id",
			"mobs:\n  - {id: x, name: X, genre: FANTASY, tags: [], rank: F, size: TINY, behavior: SWARM, base_health: 1, base_damage: 1, speed: 1, view_range: 1}\n" +
				"  - {id: x, name: Y, genre: FANTASY, tags: [], rank: F, size: TINY, behavior: SWARM, base_health: 1, base_damage: 1, speed: 1, view_range: 1}\n",
			"duplicate mob id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mobPath := filepath.Join(dir, "mobs.yaml")
			if err := os.WriteFile(mobPath, []byte(tt.mobs), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFile(mobPath, resPath)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestEnumText(t *testing.T) {
	var r Rank
	if err := r.UnmarshalText([]byte("SS")); err != nil || r != RankSS {
		t.Errorf("UnmarshalText(SS) = %v, %v", r, err)
	}
	if err := r.UnmarshalText([]byte("Q")); err == nil {
		t.Error("UnmarshalText accepted an unknown rank")
	}
	if RankSSS.String() != "SSS" || Legendary.String() != "LEGENDARY" || PostApoc.String() != "POST_APOC" {
		t.Error("enum names do not match their table spellings")
	}
	if Rank(42).String() != "Rank(42)" {
		t.Errorf("out of range rank = %s", Rank(42))
	}
}
