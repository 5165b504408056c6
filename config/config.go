// Package config provides configuration loading and access for the simulation core.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Projectile ProjectileConfig `yaml:"projectile"`
	AI         AIConfig         `yaml:"ai"`
	Combat     CombatConfig     `yaml:"combat"`
	Scan       ScanConfig       `yaml:"scan"`
	Director   DirectorConfig   `yaml:"director"`
	Loot       LootConfig       `yaml:"loot"`
	Session    SessionConfig    `yaml:"session"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds world generation parameters.
type WorldConfig struct {
	DefaultSize     int     `yaml:"default_size"`      // Grid edge length when none is given
	ChunkSize       float64 `yaml:"chunk_size"`        // World units per chunk edge
	IslandBase      float64 `yaml:"island_base"`       // Cell included when dist < base + noise*spread
	IslandSpread    float64 `yaml:"island_spread"`
	MobMin          int     `yaml:"mob_min"`           // Mob count is floor(range(min, max))
	MobMax          int     `yaml:"mob_max"`
	MobMargin       float64 `yaml:"mob_margin"`        // Mobs spawn in [margin, chunk-margin]
	ResourceMin     int     `yaml:"resource_min"`      // Resource count is floor(range(min, max))
	ResourceMax     int     `yaml:"resource_max"`
	ResourceMargin  float64 `yaml:"resource_margin"`
	POIThreshold    float64 `yaml:"poi_threshold"`     // Structure + container placed when a draw exceeds this
	POILootTable    string  `yaml:"poi_loot_table"`
	DebugSeedPrefix string  `yaml:"debug_seed_prefix"` // Seeds with this prefix produce debug worlds
}

// ProjectileConfig holds firing pattern parameters.
type ProjectileConfig struct {
	Speed         float64 `yaml:"speed"`          // Units per second
	Lifespan      float64 `yaml:"lifespan"`       // Seconds before a pattern expires
	ShotgunSpread float64 `yaml:"shotgun_spread"` // Radians between shotgun pellets
	NovaCount     int     `yaml:"nova_count"`
	SpiralArms    int     `yaml:"spiral_arms"`
	SpiralSpin    float64 `yaml:"spiral_spin"`    // Radians per second
	DeflectRange  float64 `yaml:"deflect_range"`
	DeflectAngle  float64 `yaml:"deflect_angle"`  // Half-width in radians
}

// AIConfig holds decision engine parameters.
type AIConfig struct {
	WakeDistance   float64 `yaml:"wake_distance"`   // DORMANT -> ACTIVE below this
	SleepDistance  float64 `yaml:"sleep_distance"`  // ACTIVE -> DORMANT above this
	MeleeRange     float64 `yaml:"melee_range"`
	RangedMin      float64 `yaml:"ranged_min"`      // Ranged band is (min, max)
	RangedMax      float64 `yaml:"ranged_max"`
	MoveSpeed      float64 `yaml:"move_speed"`      // Units per second
	AttackCooldown float64 `yaml:"attack_cooldown"` // Seconds between attacks
}

// CombatConfig holds resolution pipeline parameters.
type CombatConfig struct {
	ProjectileHitRadius  float64 `yaml:"projectile_hit_radius"`
	ProjectileDamage     float64 `yaml:"projectile_damage"`
	MeleeDamage          float64 `yaml:"melee_damage"`
	MeleeWindowMs        int     `yaml:"melee_window_ms"`
	MeleeHalfAngle       float64 `yaml:"melee_half_angle"`
	ContactRadius        float64 `yaml:"contact_radius"`
	DefaultContactDamage float64 `yaml:"default_contact_damage"`
	DeathBlastRadius     float64 `yaml:"death_blast_radius"`
	PickupRadius         float64 `yaml:"pickup_radius"`
}

// ScanConfig holds progressive disclosure thresholds.
// Thresholds are the minimum efficiency needed to reach each stage.
type ScanConfig struct {
	Basic    float64 `yaml:"basic"`
	Detailed float64 `yaml:"detailed"`
	Complete float64 `yaml:"complete"`
}

// DirectorConfig holds evolutionary controller parameters.
type DirectorConfig struct {
	InitialWeight   float64 `yaml:"initial_weight"`
	MinWeight       float64 `yaml:"min_weight"`
	MaxWeight       float64 `yaml:"max_weight"`
	SecondTraitDraw float64 `yaml:"second_trait_draw"` // Two traits are drawn when a draw exceeds this
	LethalKillRate  float64 `yaml:"lethal_kill_rate"`  // Kill rate above this earns LethalBonus
	LethalBonus     float64 `yaml:"lethal_bonus"`
	BrokenKillRate  float64 `yaml:"broken_kill_rate"`  // Kill rate above this earns BrokenBonus too
	BrokenBonus     float64 `yaml:"broken_bonus"`
	LongLifespan    float64 `yaml:"long_lifespan"`     // Seconds
	LongBonus       float64 `yaml:"long_bonus"`
	ShortLifespan   float64 `yaml:"short_lifespan"`    // Seconds
	ShortPenalty    float64 `yaml:"short_penalty"`
	CycleSessions   int     `yaml:"cycle_sessions"`    // Sessions per evolution cycle
}

// LootConfig holds the default loot table parameters.
type LootConfig struct {
	BiologicalChance float64 `yaml:"biological_chance"`
	MechanicalChance float64 `yaml:"mechanical_chance"`
	BossLegendary    float64 `yaml:"boss_legendary"`
	MagicFind        float64 `yaml:"magic_find"`
}

// SessionConfig holds host loop parameters.
type SessionConfig struct {
	ActiveRing     int     `yaml:"active_ring"`     // Chunks within this ring of the observer's chunk are simulated
	ObserverHealth float64 `yaml:"observer_health"`
	ScanEfficiency float64 `yaml:"scan_efficiency"`
	SwingReach     float64 `yaml:"swing_reach"`
	InteractRadius float64 `yaml:"interact_radius"` // Reach for containers and resource nodes
	ResourceYield  float64 `yaml:"resource_yield"`
	DT             float64 `yaml:"dt"`              // Seconds per tick for headless runs
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds per stats window
	Journal     bool    `yaml:"journal"`      // Write the compressed combat event journal
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MeleeWindow    time.Duration // Combat.MeleeWindowMs as a duration
	AttackCooldown time.Duration // AI.AttackCooldown as a duration
	Lifespan       time.Duration // Projectile.Lifespan as a duration
	TickDuration   time.Duration // Session.DT as a duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// validate rejects configurations the simulation cannot run with.
func (c *Config) validate() error {
	if c.AI.WakeDistance >= c.AI.SleepDistance {
		return fmt.Errorf("ai: wake_distance (%v) must be below sleep_distance (%v)", c.AI.WakeDistance, c.AI.SleepDistance)
	}
	if c.Director.MinWeight <= 0 || c.Director.MinWeight > c.Director.MaxWeight {
		return fmt.Errorf("director: weight bounds [%v, %v] are invalid", c.Director.MinWeight, c.Director.MaxWeight)
	}
	if c.World.ChunkSize <= 0 {
		return fmt.Errorf("world: chunk_size must be positive")
	}
	if c.World.MobMax < c.World.MobMin || c.World.ResourceMax < c.World.ResourceMin {
		return fmt.Errorf("world: count ranges must have max >= min")
	}
	if c.Scan.Basic > c.Scan.Detailed || c.Scan.Detailed > c.Scan.Complete {
		return fmt.Errorf("scan: thresholds must be non-decreasing")
	}
	return nil
}

// Refresh validates c and recomputes Derived after fields were changed in code.
func (c *Config) Refresh() error {
	if err := c.validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.MeleeWindow = time.Duration(c.Combat.MeleeWindowMs) * time.Millisecond
	c.Derived.AttackCooldown = seconds(c.AI.AttackCooldown)
	c.Derived.Lifespan = seconds(c.Projectile.Lifespan)
	c.Derived.TickDuration = seconds(c.Session.DT)

	if c.World.DefaultSize <= 0 {
		c.World.DefaultSize = 32
	}
	if c.Session.ActiveRing < 0 {
		c.Session.ActiveRing = 0
	}
	if c.Director.CycleSessions <= 0 {
		c.Director.CycleSessions = 1
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
