package engagement

import "fmt"

// Engine bundles the scorers built from one validated Config.
type Engine struct {
	cfg      Config
	pose     PoseScorer
	composer *Composer
	rules    SuggestionRules
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	composer, err := NewComposer(cfg.WeightAttention, cfg.WeightAffect)
	if err != nil {
		return nil, fmt.Errorf("failed to build composer: %w", err)
	}
	return &Engine{
		cfg:      cfg,
		pose:     NewPoseScorer(cfg.YawOK, cfg.PitchOK, cfg.PoseFallbackFloor),
		composer: composer,
		rules:    SuggestionRules{LowAttention: cfg.LowAttention, LowEngagement: cfg.LowEngagement},
	}, nil
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Pose() PoseScorer { return e.pose }

func (e *Engine) Composer() *Composer { return e.composer }

func (e *Engine) Sampler(fps, sampleSec float64) Sampler {
	return NewSampler(fps, sampleSec, e.cfg.FallbackFPS)
}

func (e *Engine) Highlights(sampleSec float64) HighlightExtractor {
	return NewHighlightExtractor(HighlightWindow(sampleSec, e.cfg.MinHighlightWindow), e.cfg.HighlightLimit)
}

func (e *Engine) Suggestions() SuggestionRules { return e.rules }
