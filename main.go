package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/botwar/config"
	"github.com/pthm-cable/botwar/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, snapshots and config snapshot")
	hallPath := flag.String("hall", "", "hall_of_fame.json to seed the populations from")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	battles := flag.Int("battles", 10, "Number of battles in the campaign")
	maxTicks := flag.Int("max-ticks", 0, "Tick limit per battle (0 = use config)")
	quiet := flag.Bool("quiet", false, "Only log the campaign summary")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *maxTicks > 0 {
		cfg.Battle.MaxTicks = *maxTicks
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:           rngSeed,
		OutputDir:      *outputDir,
		HallOfFamePath: *hallPath,
		LogBattles:     !*quiet,
	}

	campaign, err := game.NewCampaign(cfg, opts)
	if err != nil {
		slog.Error("failed to create campaign", "error", err)
		os.Exit(1)
	}
	defer campaign.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting campaign",
		"seed", rngSeed,
		"battles", *battles,
		"max_ticks", cfg.Battle.MaxTicks,
		"output_dir", *outputDir,
	)

	if err := campaign.Run(ctx, *battles); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("campaign interrupted", "battles", campaign.Battles())
			return
		}
		slog.Error("campaign failed", "error", err)
		campaign.Close()
		os.Exit(1)
	}
}
