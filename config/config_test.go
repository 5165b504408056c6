package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AI.WakeDistance != 15 || cfg.AI.SleepDistance != 30 {
		t.Errorf("wake/sleep = %v/%v, want 15/30", cfg.AI.WakeDistance, cfg.AI.SleepDistance)
	}
	if cfg.Combat.ProjectileDamage != 25 || cfg.Combat.MeleeDamage != 50 {
		t.Errorf("damage = %v/%v, want 25/50", cfg.Combat.ProjectileDamage, cfg.Combat.MeleeDamage)
	}
	if cfg.Derived.MeleeWindow != 200*time.Millisecond {
		t.Errorf("melee window = %v, want 200ms", cfg.Derived.MeleeWindow)
	}
	if cfg.Derived.AttackCooldown != 2*time.Second {
		t.Errorf("attack cooldown = %v, want 2s", cfg.Derived.AttackCooldown)
	}
	if cfg.Director.MinWeight != 0.1 || cfg.Director.MaxWeight != 5.0 {
		t.Errorf("weight bounds = [%v, %v], want [0.1, 5]", cfg.Director.MinWeight, cfg.Director.MaxWeight)
	}
}

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	if err := os.WriteFile(path, []byte("combat:\n  melee_damage: 80\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Combat.MeleeDamage != 80 {
		t.Errorf("melee damage = %v, want 80", cfg.Combat.MeleeDamage)
	}
	if cfg.Combat.ProjectileDamage != 25 {
		t.Errorf("projectile damage = %v, want default 25", cfg.Combat.ProjectileDamage)
	}
}

func TestLoadRejectsInvertedHysteresis(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("ai:\n  wake_distance: 40\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for wake_distance above sleep_distance")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Session.ObserverHealth = 42

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Session.ObserverHealth != 42 {
		t.Errorf("observer health = %v, want 42", loaded.Session.ObserverHealth)
	}
}

func TestRefreshRecomputesDerived(t *testing.T) {
	cfg := Defaults()
	cfg.AI.AttackCooldown = 0.5
	if err := cfg.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if cfg.Derived.AttackCooldown != 500*time.Millisecond {
		t.Errorf("attack cooldown = %v, want 500ms", cfg.Derived.AttackCooldown)
	}

	cfg.AI.WakeDistance = cfg.AI.SleepDistance
	if err := cfg.Refresh(); err == nil {
		t.Error("expected error for wake_distance equal to sleep_distance")
	}
}
