package telemetry

import (
	"fmt"
	"log/slog"
	"time"
)

// Phase is one stage of the session tick.
type Phase uint8

const (
	PhaseAI Phase = iota
	PhaseExpand
	PhaseCombat
	PhaseHostileFire
	PhaseApply
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{"ai", "expand", "combat", "hostile_fire", "apply", "telemetry"}

func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", p)
}

// tickCost is the wall-clock cost of one tick and the work it did.
type tickCost struct {
	total       time.Duration
	phases      [numPhases]time.Duration
	mobs        int // Mobs in simulated chunks
	projectiles int // Live projectiles resolved against mobs and the observer
}

// PerfCollector keeps the cost of the last windowSize ticks. A nil collector
// ignores every call.
type PerfCollector struct {
	ring   []tickCost
	next   int
	filled int

	cur        tickCost
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	clock func() time.Time
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		ring:  make([]tickCost, windowSize),
		clock: time.Now,
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	if p == nil {
		return
	}
	p.cur = tickCost{}
	p.tickStart = p.clock()
	p.inPhase = false
}

// StartPhase closes the running phase and starts timing ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	if p == nil || ph >= numPhases {
		return
	}
	now := p.clock()
	p.closePhase(now)
	p.phase, p.phaseStart, p.inPhase = ph, now, true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
		p.inPhase = false
	}
}

// Load records how much the current tick had to simulate.
func (p *PerfCollector) Load(mobs, projectiles int) {
	if p == nil {
		return
	}
	p.cur.mobs = mobs
	p.cur.projectiles = projectiles
}

// EndTick closes the tick and stores it in the window.
func (p *PerfCollector) EndTick() {
	if p == nil {
		return
	}
	now := p.clock()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.filled < len(p.ring) {
		p.filled++
	}
}

// PerfStats describes where tick time went over the window.
type PerfStats struct {
	Ticks  int
	TickUS Summary // Per-tick wall time in microseconds

	// Share of total tick time spent in each phase, in [0,1]
	Share   [numPhases]float64
	Hottest Phase

	MeanMobs        float64
	MeanProjectiles float64

	// Combat and hostile-fire time per resolved projectile. Zero when no
	// projectile was in flight.
	ResolveNSPerProjectile float64
}

// Stats summarizes the ticks currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if p == nil || p.filled == 0 {
		return s
	}
	s.Ticks = p.filled

	tickUS := make([]float64, 0, p.filled)
	var total time.Duration
	var phases [numPhases]time.Duration
	mobs, projectiles := 0, 0
	for _, c := range p.ring[:p.filled] {
		tickUS = append(tickUS, float64(c.total)/float64(time.Microsecond))
		total += c.total
		for i, d := range c.phases {
			phases[i] += d
		}
		mobs += c.mobs
		projectiles += c.projectiles
	}
	s.TickUS = Summarize(tickUS)

	for i, d := range phases {
		if total > 0 {
			s.Share[i] = float64(d) / float64(total)
		}
		if d > phases[s.Hottest] {
			s.Hottest = Phase(i)
		}
	}

	s.MeanMobs = float64(mobs) / float64(p.filled)
	s.MeanProjectiles = float64(projectiles) / float64(p.filled)
	if projectiles > 0 {
		resolve := phases[PhaseCombat] + phases[PhaseHostileFire]
		s.ResolveNSPerProjectile = float64(resolve) / float64(projectiles)
	}
	return s
}

// LogStats logs the window at info level. Phases under 1% are left out.
func (s PerfStats) LogStats() {
	attrs := []any{
		"ticks", s.Ticks,
		"tick_us_mean", int64(s.TickUS.Mean),
		"tick_us_p90", int64(s.TickUS.P90),
		"hottest", s.Hottest.String(),
		"mobs", s.MeanMobs,
		"projectiles", s.MeanProjectiles,
	}
	for i, share := range s.Share {
		if share >= 0.01 {
			attrs = append(attrs, Phase(i).String()+"_pct", int(share*1000)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is the perf.csv row.
type PerfStatsCSV struct {
	WindowEnd              int     `csv:"window_end"`
	Ticks                  int     `csv:"ticks"`
	TickMeanUS             float64 `csv:"tick_mean_us"`
	TickP50US              float64 `csv:"tick_p50_us"`
	TickP90US              float64 `csv:"tick_p90_us"`
	AIShare                float64 `csv:"ai_share"`
	ExpandShare            float64 `csv:"expand_share"`
	CombatShare            float64 `csv:"combat_share"`
	HostileFireShare       float64 `csv:"hostile_fire_share"`
	ApplyShare             float64 `csv:"apply_share"`
	TelemetryShare         float64 `csv:"telemetry_share"`
	Hottest                string  `csv:"hottest"`
	MeanMobs               float64 `csv:"mean_mobs"`
	MeanProjectiles        float64 `csv:"mean_projectiles"`
	ResolveNSPerProjectile float64 `csv:"resolve_ns_per_projectile"`
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:              windowEnd,
		Ticks:                  s.Ticks,
		TickMeanUS:             s.TickUS.Mean,
		TickP50US:              s.TickUS.P50,
		TickP90US:              s.TickUS.P90,
		AIShare:                s.Share[PhaseAI],
		ExpandShare:            s.Share[PhaseExpand],
		CombatShare:            s.Share[PhaseCombat],
		HostileFireShare:       s.Share[PhaseHostileFire],
		ApplyShare:             s.Share[PhaseApply],
		TelemetryShare:         s.Share[PhaseTelemetry],
		Hottest:                s.Hottest.String(),
		MeanMobs:               s.MeanMobs,
		MeanProjectiles:        s.MeanProjectiles,
		ResolveNSPerProjectile: s.ResolveNSPerProjectile,
	}
}
