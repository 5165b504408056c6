package main

import (
	"context"
	"log"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/rift/config"
	"github.com/pthm-cable/rift/defs"
	"github.com/pthm-cable/rift/game"
	"github.com/pthm-cable/rift/session"
	"github.com/pthm-cable/rift/telemetry"
)

// Target is the balance an evaluation is scored against.
type Target struct {
	ExtractRate  float64 // Share of sessions the autopilot should survive
	DamageTaken  float64 // Mean damage taken as a share of starting health
	DamageWeight float64
}

// Score summarises the sessions of one evaluation.
type Score struct {
	ExtractRate float64
	DamageTaken float64
	Fitness     float64 // Lower is better
}

// score compares played sessions with the target. Damage is capped at full
// health so a death counts the same however it happened.
func score(records []telemetry.SessionRecord, maxHealth float64, target Target) Score {
	if len(records) == 0 || maxHealth <= 0 {
		return Score{Fitness: math.Inf(1)}
	}
	extracted := make([]float64, len(records))
	damage := make([]float64, len(records))
	for i, r := range records {
		if r.Outcome == string(session.Extracted) {
			extracted[i] = 1
		}
		damage[i] = math.Min(r.DamageTaken/maxHealth, 1)
	}

	s := Score{
		ExtractRate: stat.Mean(extracted, nil),
		DamageTaken: stat.Mean(damage, nil),
	}
	dr := s.ExtractRate - target.ExtractRate
	dd := s.DamageTaken - target.DamageTaken
	s.Fitness = dr*dr + target.DamageWeight*dd*dd
	return s
}

// FitnessEvaluator plays headless sessions and scores them.
type FitnessEvaluator struct {
	params     *ParamVector
	baseConfig *config.Config
	tables     *defs.Tables
	target     Target
	seeds      []string
	sessions   int
	size       int
	maxTicks   int

	mu        sync.Mutex
	lastScore Score
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, baseCfg *config.Config, tables *defs.Tables, target Target, seeds []string, sessions, size, maxTicks int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		baseConfig: baseCfg,
		tables:     tables,
		target:     target,
		seeds:      seeds,
		sessions:   sessions,
		size:       size,
		maxTicks:   maxTicks,
	}
}

// LastScore returns the score of the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() Score {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}

// Evaluate computes fitness for a raw parameter vector (lower = better). Every
// seed plays its sessions in parallel; the records are pooled before scoring.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return math.Inf(1)
	}

	results := make([][]telemetry.SessionRecord, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, seed string) {
			defer wg.Done()
			results[idx] = fe.run(cfg, seed)
		}(i, seed)
	}
	wg.Wait()

	var all []telemetry.SessionRecord
	for _, r := range results {
		all = append(all, r...)
	}
	s := score(all, cfg.Session.ObserverHealth, fe.target)

	fe.mu.Lock()
	fe.lastScore = s
	fe.mu.Unlock()
	return s.Fitness
}

// run plays one seed's sessions.
func (fe *FitnessEvaluator) run(cfg *config.Config, seed string) []telemetry.SessionRecord {
	g, err := game.New(game.Options{
		Seed:     seed,
		Size:     fe.size,
		Sessions: fe.sessions,
		MaxTicks: fe.maxTicks,
		Config:   cfg,
		Tables:   fe.tables,
	})
	if err != nil {
		log.Fatalf("starting game: %v", err)
	}
	defer g.Close()

	records, _ := g.Run(context.Background())
	return records
}

// copyConfig returns a copy of the base config. Config holds only values, so a
// struct copy shares nothing.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
