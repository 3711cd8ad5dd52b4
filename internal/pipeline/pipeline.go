package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/kdimtricp/lecturepulse/internal/ai"
	"github.com/kdimtricp/lecturepulse/internal/ai/opencv"
	"github.com/kdimtricp/lecturepulse/internal/analysis"
	"github.com/kdimtricp/lecturepulse/internal/config"
	"github.com/kdimtricp/lecturepulse/internal/engagement"
)

// Pipeline is the wired set of collaborators for an analysis run.
type Pipeline struct {
	Opener       ai.VideoOpener
	Detector     ai.FaceDetector
	Classifier   ai.EmotionClassifier
	Engine       *engagement.Engine
	Orchestrator *analysis.Orchestrator

	closers []io.Closer
}

// New builds the detector and classifier selected in cfg.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Pipeline, error) {
	engine, err := engagement.NewEngine(cfg.Analysis)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{Opener: opencv.VideoOpener{}, Engine: engine}

	p.Detector, err = p.detector(ctx, cfg.AI)
	if err != nil {
		p.Close()
		return nil, err
	}

	p.Classifier, err = p.classifier(cfg.AI)
	if err != nil {
		p.Close()
		return nil, err
	}

	p.Orchestrator = analysis.NewOrchestrator(p.Opener, p.Detector, p.Classifier, engine, logger)

	logger.Info().
		Str("detector", cfg.AI.Detector).
		Str("classifier", cfg.AI.Classifier).
		Msg("analysis pipeline ready")
	return p, nil
}

func (p *Pipeline) detector(ctx context.Context, cfg config.AIConfig) (ai.FaceDetector, error) {
	switch cfg.Detector {
	case config.DetectorYuNet:
		return p.yunet(cfg)
	case config.DetectorVision:
		return visionDetector(ctx, cfg)
	case config.DetectorMerged:
		primary, err := p.yunet(cfg)
		if err != nil {
			return nil, err
		}
		secondary, err := visionDetector(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return ai.NewMergedDetector(primary, secondary), nil
	default:
		return nil, fmt.Errorf("unknown face detector %q", cfg.Detector)
	}
}

func (p *Pipeline) yunet(cfg config.AIConfig) (*opencv.YuNetDetector, error) {
	yc := opencv.DefaultYuNetConfig()
	if cfg.YuNetModelPath != "" {
		yc.ModelPath = cfg.YuNetModelPath
	}
	if cfg.YuNetScoreThresh > 0 {
		yc.ConfidenceThresh = cfg.YuNetScoreThresh
	}
	detector, err := opencv.NewYuNet(yc)
	if err != nil {
		return nil, fmt.Errorf("loading YuNet detector: %w", err)
	}
	p.closers = append(p.closers, detector)
	return detector, nil
}

func visionDetector(ctx context.Context, cfg config.AIConfig) (*ai.GoogleVisionDetector, error) {
	switch {
	case cfg.GoogleVisionServiceAccount != "":
		return ai.NewGoogleVisionDetectorWithServiceAccount(ctx, cfg.GoogleVisionServiceAccount)
	case cfg.GoogleVisionKey != "":
		return ai.NewGoogleVisionDetectorWithAPIKey(ctx, cfg.GoogleVisionKey)
	default:
		return nil, errors.New("google vision detector needs GOOGLE_VISION_API_KEY or GOOGLE_VISION_SERVICE_ACCOUNT")
	}
}

func (p *Pipeline) classifier(cfg config.AIConfig) (ai.EmotionClassifier, error) {
	switch cfg.Classifier {
	case config.ClassifierONNX:
		net, err := opencv.NewEmotionNet(cfg.EmotionModelPath)
		if err != nil {
			return nil, fmt.Errorf("loading emotion model: %w", err)
		}
		p.closers = append(p.closers, net)
		return net, nil
	case config.ClassifierOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("openai classifier needs OPENAI_API_KEY")
		}
		return ai.NewOpenAIEmotionClassifier(cfg.OpenAIAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown emotion classifier %q", cfg.Classifier)
	}
}

// Close releases native model handles.
func (p *Pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}
