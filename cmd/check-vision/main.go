package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/kdimtricp/lecturepulse/internal/ai/opencv"
	"github.com/kdimtricp/lecturepulse/internal/config"
	"github.com/kdimtricp/lecturepulse/internal/logging"
	"github.com/kdimtricp/lecturepulse/internal/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config.yaml")
		imagePath  = flag.String("image", "", "Image with one or more faces")
	)
	flag.Parse()

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "Please provide an image with -image")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.Logging.Verbose, cfg.Logging.JSON)
	logger := logging.WithComponent("check-vision")

	fmt.Println("Checking face detection and emotion classification")
	fmt.Println("==================================================")
	fmt.Printf("Detector:   %s\n", cfg.AI.Detector)
	fmt.Printf("Classifier: %s\n\n", cfg.AI.Classifier)

	ctx := context.Background()
	pipe, err := pipeline.New(ctx, cfg, logging.WithComponent("pipeline"))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize analysis pipeline")
	}
	defer pipe.Close()

	data, err := os.ReadFile(*imagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read image")
	}
	img, err := opencv.DecodeImage(data)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to decode image")
	}
	defer img.Close()

	obs, err := pipe.Orchestrator.AnalyzeImage(ctx, img)
	if err != nil {
		logger.Fatal().Err(err).Msg("Image analysis failed")
	}

	fmt.Printf("Faces found: %d (positive: %d, attention: %.2f)\n\n", obs.FaceCount, obs.PositiveFaces, obs.AttentionRatio)
	for i, face := range obs.Faces {
		fmt.Printf("Face %d\n", i+1)
		if face.BBox != nil {
			fmt.Printf("  box:        x=%d y=%d w=%d h=%d\n", face.BBox.X, face.BBox.Y, face.BBox.Width, face.BBox.Height)
		}
		if face.Yaw != nil && face.Pitch != nil {
			fmt.Printf("  pose:       yaw=%.1f pitch=%.1f\n", *face.Yaw, *face.Pitch)
		} else {
			fmt.Println("  pose:       unavailable")
		}
		fmt.Printf("  looking:    %s\n", face.GazeTarget)
		fmt.Printf("  attention:  %.2f\n", face.Attention)
		fmt.Printf("  engagement: %.2f\n", face.Engagement)
		fmt.Printf("  emotion:    %s (%.2f)", face.TopEmotion.Label, face.TopEmotion.Prob)
		if face.Degraded {
			fmt.Print("  [classifier failed, neutral fallback]")
		}
		fmt.Println()

		labels := face.Emotions.Labels()
		sort.SliceStable(labels, func(a, b int) bool {
			return face.Emotions[labels[a]] > face.Emotions[labels[b]]
		})
		for _, label := range labels {
			fmt.Printf("    %-9s %.3f\n", label, face.Emotions[label])
		}
		fmt.Println()
	}
}
