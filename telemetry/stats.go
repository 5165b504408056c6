package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int     `csv:"-"`
	WindowEndTick   int     `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Session         int     `csv:"session"`

	// Mob population at window end
	LiveMobs   int `csv:"live_mobs"`
	ActiveMobs int `csv:"active_mobs"`

	// Observer offence
	ProjectileHits int     `csv:"projectile_hits"`
	MeleeHits      int     `csv:"melee_hits"`
	Kills          int     `csv:"kills"`
	XP             int     `csv:"xp"`
	KillRate       float64 `csv:"kill_rate"` // Kills per hit
	PatternsFired  int     `csv:"patterns_fired"`
	HitsPerAttack  float64 `csv:"hits_per_attack"`

	// Loot
	LootDrops int `csv:"loot_drops"`
	LootItems int `csv:"loot_items"`

	// Observer defence
	ObserverHits   int     `csv:"observer_hits"`
	ObserverDamage float64 `csv:"observer_damage"`
	ObserverHealth float64 `csv:"observer_health"`
	MobAttacks     int     `csv:"mob_attacks"`
	Deflections    int     `csv:"deflections"`
	Scans          int     `csv:"scans"`

	// Health fraction of simulated mobs (sampled at window end)
	MobHealthMean float64 `csv:"mob_health_mean"`
	MobHealthStd  float64 `csv:"mob_health_std"`
	MobHealthP10  float64 `csv:"mob_health_p10"`
	MobHealthP50  float64 `csv:"mob_health_p50"`
	MobHealthP90  float64 `csv:"mob_health_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summary is the distribution of a sampled value.
type Summary struct {
	Mean float64
	Std  float64 // Sample standard deviation; 0 with fewer than two values
	P10  float64
	P50  float64
	P90  float64
}

// Summarize computes mean, spread and percentiles of values.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	var s Summary
	if n == 1 {
		s.Mean = values[0]
	} else {
		s.Mean, s.Std = stat.MeanStdDev(values, nil)
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	s.P10 = Percentile(sorted, 0.10)
	s.P50 = Percentile(sorted, 0.50)
	s.P90 = Percentile(sorted, 0.90)

	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("session", s.Session),
		slog.Int("live_mobs", s.LiveMobs),
		slog.Int("active_mobs", s.ActiveMobs),
		slog.Int("projectile_hits", s.ProjectileHits),
		slog.Int("melee_hits", s.MeleeHits),
		slog.Int("kills", s.Kills),
		slog.Int("xp", s.XP),
		slog.Float64("kill_rate", s.KillRate),
		slog.Int("patterns_fired", s.PatternsFired),
		slog.Int("loot_drops", s.LootDrops),
		slog.Int("observer_hits", s.ObserverHits),
		slog.Float64("observer_damage", s.ObserverDamage),
		slog.Float64("observer_health", s.ObserverHealth),
		slog.Int("mob_attacks", s.MobAttacks),
		slog.Int("deflections", s.Deflections),
		slog.Float64("mob_health_mean", s.MobHealthMean),
		slog.Float64("mob_health_p50", s.MobHealthP50),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"session", s.Session,
		"live_mobs", s.LiveMobs,
		"active_mobs", s.ActiveMobs,
		"kills", s.Kills,
		"xp", s.XP,
		"kill_rate", s.KillRate,
		"patterns_fired", s.PatternsFired,
		"hits_per_attack", s.HitsPerAttack,
		"loot_drops", s.LootDrops,
		"observer_damage", s.ObserverDamage,
		"observer_health", s.ObserverHealth,
		"mob_attacks", s.MobAttacks,
		"deflections", s.Deflections,
		"mob_health_mean", s.MobHealthMean,
	)
}
