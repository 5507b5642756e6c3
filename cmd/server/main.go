package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/twquant/tw-screener/internal/clients/finmind"
	"github.com/twquant/tw-screener/internal/config"
	"github.com/twquant/tw-screener/internal/database"
	"github.com/twquant/tw-screener/internal/modules/factors"
	"github.com/twquant/tw-screener/internal/modules/marketdata"
	"github.com/twquant/tw-screener/internal/modules/screener"
	"github.com/twquant/tw-screener/internal/modules/universe"
	"github.com/twquant/tw-screener/internal/notify"
	"github.com/twquant/tw-screener/internal/scheduler"
	"github.com/twquant/tw-screener/internal/server"
	"github.com/twquant/tw-screener/pkg/logger"
)

func main() {
	// Load configuration first so the logger respects LOG_LEVEL
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting TW Screener")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Load the screening universe
	names, err := universe.Load(cfg.StockListPath, log)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StockListPath).Msg("Failed to load stock list")
	}

	// Repositories
	fundamentalRepo := marketdata.NewFundamentalRepository(db.Conn(), log)
	priceRepo := marketdata.NewPriceRepository(db.Conn(), log)
	chipRepo := marketdata.NewChipRepository(db.Conn(), log)
	holdingRepo := marketdata.NewShareholdingRepository(db.Conn(), log)

	// Data collection
	source := finmind.NewClient(cfg.FinMindAPIURL, cfg.FinMindToken, log)
	collector := marketdata.NewCollector(source, fundamentalRepo, priceRepo, chipRepo, holdingRepo, log)

	// Scoring pipeline
	engine, err := factors.NewEngine(factors.EngineConfig{
		Fundamentals: fundamentalRepo,
		Prices:       priceRepo,
		Weights:      factors.LoadWeights(cfg.WeightsPath, log),
		Log:          log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize factor engine")
	}

	screen := screener.New(screener.Config{
		Engine:    engine,
		Chip:      screener.NewChipScorer(chipRepo, holdingRepo, log),
		Technical: screener.NewTechnicalScorer(priceRepo, log),
		Names:     names,
		TopN:      cfg.TopN,
		Log:       log,
	})

	// Notification channels
	notifier := buildNotifier(cfg, log)

	// Screening job feeds the result cache served by the API
	results := screener.NewResultCache()
	job := scheduler.NewScreeningJob(scheduler.ScreeningConfig{
		Log:       log,
		Collector: collector,
		Screener:  screen,
		Universe:  names.Symbols(),
		ReportDir: cfg.ReportDir,
		Notifier:  notifier,
		OnResult:  results.Set,
	})

	// Initialize scheduler
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.ScreeningSchedule, job); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.ScreeningSchedule).Msg("Failed to register screening job")
	}
	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:    cfg.Port,
		Log:     log,
		DB:      db,
		Results: results,
		TriggerRun: func() error {
			return sched.RunNow(job)
		},
		DevMode: cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// buildNotifier assembles the notification service from whichever channels are
// configured. Returns nil when none are, which the job treats as "don't notify".
func buildNotifier(cfg *config.Config, log zerolog.Logger) *notify.Service {
	var senders []notify.Sender
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegram("", cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	if cfg.LineNotifyToken != "" {
		senders = append(senders, notify.NewLineNotify("", cfg.LineNotifyToken))
	}
	if len(senders) == 0 {
		return nil
	}
	return notify.NewService(log, senders...)
}
