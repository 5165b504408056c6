package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/pthm-cable/rift/config"
	"github.com/pthm-cable/rift/game"
	"github.com/pthm-cable/rift/session"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.String("seed", "", "World seed (empty = time-based)")
	size := flag.Int("size", 0, "World grid edge in chunks (0 = use config)")
	sessions := flag.Int("sessions", 1, "Number of sessions to play")
	maxTicks := flag.Int("max-ticks", 0, "Stop each session after N ticks (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, worlds and the event journal")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	debug := flag.Bool("debug", false, "Generate debug worlds (everything revealed)")
	verbose := flag.Bool("v", false, "Debug-level logging")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	runSeed := *seed
	if runSeed == "" {
		runSeed = strconv.FormatInt(time.Now().UnixNano(), 36)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, err := game.New(game.Options{
		Seed:      runSeed,
		Size:      *size,
		Sessions:  *sessions,
		MaxTicks:  *maxTicks,
		OutputDir: *outputDir,
		LogStats:  *logStats,
		Debug:     *debug,
		Config:    cfg,
	})
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}

	records, runErr := g.Run(ctx)
	if err := g.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	if runErr != nil {
		slog.Warn("run interrupted", "error", runErr, "sessions", len(records))
	}

	extracted := 0
	for _, r := range records {
		if r.Outcome == string(session.Extracted) {
			extracted++
		}
	}
	slog.Info("run complete",
		"seed", runSeed,
		"sessions", len(records),
		"extracted", extracted,
		"director_cycles", g.Director().Cycle(),
	)
}
