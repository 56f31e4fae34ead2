package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mohamedkhairy/stock-analytics/internal/config"
	"github.com/mohamedkhairy/stock-analytics/internal/data"
	"github.com/mohamedkhairy/stock-analytics/internal/report"
	"github.com/mohamedkhairy/stock-analytics/internal/screener"
	"github.com/mohamedkhairy/stock-analytics/pkg/indicator"
	"github.com/mohamedkhairy/stock-analytics/pkg/logger"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting screener",
		logger.String("provider", cfg.MarketData.Provider),
		logger.String("schedule", cfg.Screener.Schedule),
		logger.Int("workers", cfg.Screening.Workers),
		logger.Int("max_candidates", cfg.Screening.MaxCandidates),
	)

	provider, err := data.NewProvider(cfg.MarketData.Provider, cfg.ProviderConfig())
	if err != nil {
		logger.Fatal("Failed to initialize market data provider", logger.ErrorField(err))
	}
	engine, err := indicator.NewEngine(cfg.Windows)
	if err != nil {
		logger.Fatal("Failed to initialize indicator engine", logger.ErrorField(err))
	}
	s, err := screener.NewScreener(cfg.Screening, provider, engine)
	if err != nil {
		logger.Fatal("Failed to initialize screener", logger.ErrorField(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Screener.Schedule == "" {
		if err := runOnce(ctx, s, cfg.Screener.OutputDir); err != nil {
			logger.Error("Screening failed", logger.ErrorField(err))
			os.Exit(1)
		}
		return
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(cfg.Screener.Schedule, func() {
		if err := runOnce(ctx, s, cfg.Screener.OutputDir); err != nil {
			logger.Error("Scheduled screening failed", logger.ErrorField(err))
		}
	}); err != nil {
		logger.Fatal("Failed to register screening schedule", logger.ErrorField(err))
	}
	c.Start()
	logger.Info("Screening scheduled", logger.String("schedule", cfg.Screener.Schedule))

	<-ctx.Done()
	logger.Info("Shutting down screener")

	// Wait for a running job to finish
	<-c.Stop().Done()
	logger.Info("Screener stopped")
}

// runOnce executes one screening run, logs the ranking and writes the
// CSV and JSON reports
func runOnce(ctx context.Context, s *screener.Screener, outputDir string) error {
	rep, err := s.Run(ctx)
	if err != nil {
		return err
	}

	log := logger.WithContext(logger.WithRunID(ctx, rep.RunID))
	log.Info("Screening finished",
		logger.Int("universe", rep.Universe),
		logger.Int("basic_passed", rep.BasicPassed),
		logger.Int("candidates", rep.Count(screener.StatusCandidate)),
		logger.Int("filtered", rep.Count(screener.StatusFiltered)),
		logger.Int("no_data", rep.Count(screener.StatusNoData)),
		logger.Int("failed", rep.Count(screener.StatusFailed)),
		logger.Int("skipped", rep.Count(screener.StatusSkipped)),
		logger.Duration("elapsed", rep.FinishedAt.Sub(rep.StartedAt)),
	)
	for i, c := range rep.Top {
		log.Info("Ranked candidate",
			logger.Int("rank", i+1),
			logger.Symbol(c.Symbol),
			logger.String("name", c.Name),
			logger.String("industry", c.Industry),
			logger.String("close", c.Close.String()),
			logger.Float64("score", c.Score),
			logger.String("breakdown", c.Breakdown),
		)
	}

	if _, err := report.SaveCSV(outputDir, rep); err != nil {
		return err
	}
	if _, err := report.SaveJSON(outputDir, rep); err != nil {
		return err
	}
	return nil
}
