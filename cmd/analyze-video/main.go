package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kdimtricp/lecturepulse/internal/analysis"
	"github.com/kdimtricp/lecturepulse/internal/config"
	"github.com/kdimtricp/lecturepulse/internal/database"
	"github.com/kdimtricp/lecturepulse/internal/logging"
	"github.com/kdimtricp/lecturepulse/internal/pipeline"
	"github.com/kdimtricp/lecturepulse/internal/processing"
	"github.com/kdimtricp/lecturepulse/internal/storage"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config.yaml")
		videoPath  = flag.String("file", "", "Video file to analyze directly")
		lectureID  = flag.String("id", "", "Lecture ID to analyze and store")
		sampleSec  = flag.Float64("sample", 0, "Sampling period in seconds (0 uses the configured default)")
		output     = flag.String("out", "", "Write the report JSON here instead of stdout")
		verbose    = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if (*videoPath == "") == (*lectureID == "") {
		fmt.Fprintln(os.Stderr, "Provide exactly one of -file or -id")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(*verbose || cfg.Logging.Verbose, cfg.Logging.JSON)
	logger := logging.WithComponent("analyze-video")

	ctx := context.Background()
	pipe, err := pipeline.New(ctx, cfg, logging.WithComponent("pipeline"))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize analysis pipeline")
	}
	defer pipe.Close()

	sample := *sampleSec
	if sample == 0 {
		sample = cfg.Analysis.SampleSec
	}

	var out any
	if *videoPath != "" {
		start := time.Now()
		report, err := pipe.Orchestrator.Run(ctx, analysis.Request{VideoID: *videoPath, Path: *videoPath, SampleSec: sample}, progressLogger())
		if err != nil {
			logger.Fatal().Err(err).Msg("Analysis failed")
		}
		logger.Info().Dur("elapsed", time.Since(start)).Int("degraded_faces", report.DegradedFaces).Msg("Analysis finished")
		out = report.Artifact()
	} else {
		out = analyzeLecture(ctx, cfg, pipe, *lectureID, sample)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to encode report")
	}
	if *output == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*output, data, 0644); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write report")
	}
	logger.Info().Str("path", *output).Msg("Report written")
}

// analyzeLecture runs a stored lecture through the same service as the
// server so that status, artifact and result row are all updated.
func analyzeLecture(ctx context.Context, cfg *config.Config, pipe *pipeline.Pipeline, lectureID string, sample float64) any {
	logger := logging.WithComponent("analyze-video")

	db, err := database.NewDB(cfg.DB())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	videos, err := storage.NewVideoStore(cfg.Storage.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	metrics, err := storage.NewMetricsStore(cfg.Storage.MetricsDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize metrics store")
	}

	pool := processing.NewPool(1, log.Logger)
	service := analysis.NewService(
		pipe.Orchestrator,
		database.NewLectureRepository(db),
		database.NewAnalysisResultRepo(db),
		metrics,
		videos,
		pool,
		analysis.Config{Engagement: cfg.Analysis},
		log.Logger,
	)

	result, err := service.AnalyzeNow(ctx, lectureID, sample)
	pool.Wait()
	if err != nil {
		logger.Fatal().Err(err).Str("lecture_id", lectureID).Msg("Analysis failed")
	}
	return result
}

func progressLogger() analysis.ProgressFunc {
	logger := logging.WithComponent("progress")
	last := -1
	return func(p analysis.Progress) {
		if p.Percent == last {
			return
		}
		last = p.Percent
		logger.Info().Int("percent", p.Percent).Stringer("stage", p.Stage).Int("frames", p.FramesProcessed).Msg("progress")
	}
}
