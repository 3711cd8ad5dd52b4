package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kdimtricp/lecturepulse/internal/ai/opencv"
	"github.com/kdimtricp/lecturepulse/internal/analysis"
	"github.com/kdimtricp/lecturepulse/internal/api"
	"github.com/kdimtricp/lecturepulse/internal/config"
	"github.com/kdimtricp/lecturepulse/internal/database"
	"github.com/kdimtricp/lecturepulse/internal/logging"
	"github.com/kdimtricp/lecturepulse/internal/pipeline"
	"github.com/kdimtricp/lecturepulse/internal/processing"
	"github.com/kdimtricp/lecturepulse/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.Logging.Verbose, cfg.Logging.JSON)
	logger := logging.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	videos, err := storage.NewVideoStore(cfg.Storage.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	metrics, err := storage.NewMetricsStore(cfg.Storage.MetricsDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize metrics store")
	}

	db, err := database.NewDB(cfg.DB())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	pipe, err := pipeline.New(ctx, cfg, logging.WithComponent("pipeline"))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize analysis pipeline")
	}
	defer pipe.Close()

	lectures := database.NewLectureRepository(db)
	results := database.NewAnalysisResultRepo(db)
	pool := processing.NewPool(cfg.Server.Workers, log.Logger)

	service := analysis.NewService(
		pipe.Orchestrator,
		lectures,
		results,
		metrics,
		videos,
		pool,
		analysis.Config{Engagement: cfg.Analysis},
		log.Logger,
	)

	app := &api.App{
		Storage:       videos,
		Lectures:      lectures,
		Results:       results,
		Artifacts:     metrics,
		Analysis:      service,
		Images:        pipe.Orchestrator,
		DecodeImage:   opencv.DecodeImage,
		MaxUploadSize: cfg.Server.MaxUploadSize,
		Logger:        log.Logger,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info().
		Str("port", cfg.Server.Port).
		Str("upload_dir", cfg.Storage.UploadDir).
		Str("metrics_dir", cfg.Storage.MetricsDir).
		Str("db_type", cfg.Database.Type).
		Int64("max_upload_size", cfg.Server.MaxUploadSize).
		Int("workers", cfg.Server.Workers).
		Msg("Server starting")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Server shutdown failed")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Server failed")
	}

	logger.Info().Msg("Waiting for running analyses")
	pool.Wait()
}
