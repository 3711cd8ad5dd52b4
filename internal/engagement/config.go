package engagement

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfiguration is returned when scoring parameters cannot produce
// bounded scores.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config holds every tunable of the scoring engine.
type Config struct {
	SampleSec    float64 `yaml:"sample_sec"`
	MinSampleSec float64 `yaml:"min_sample_sec"`
	MaxSampleSec float64 `yaml:"max_sample_sec"`
	FallbackFPS  float64 `yaml:"fallback_fps"`

	YawOK   float64 `yaml:"yaw_ok"`
	PitchOK float64 `yaml:"pitch_ok"`
	// PoseFallbackFloor is the minimum attention given to a detection whose
	// head pose could not be solved.
	PoseFallbackFloor float64 `yaml:"pose_fallback_floor"`

	WeightAttention float64 `yaml:"weight_attention"`
	WeightAffect    float64 `yaml:"weight_affect"`

	HighlightLimit     int     `yaml:"highlight_limit"`
	MinHighlightWindow float64 `yaml:"min_highlight_window"`

	LowAttention  float64 `yaml:"low_attention"`
	LowEngagement float64 `yaml:"low_engagement"`
}

func DefaultConfig() Config {
	return Config{
		SampleSec:          1.0,
		MinSampleSec:       0.1,
		MaxSampleSec:       10.0,
		FallbackFPS:        DefaultFallbackFPS,
		YawOK:              30.0,
		PitchOK:            20.0,
		PoseFallbackFloor:  0.4,
		WeightAttention:    0.6,
		WeightAffect:       0.4,
		HighlightLimit:     3,
		MinHighlightWindow: 2.0,
		LowAttention:       0.5,
		LowEngagement:      0.4,
	}
}

// Validate reports the first parameter that is out of range.
func (c Config) Validate() error {
	if err := c.ValidateSampleSec(c.SampleSec); err != nil {
		return err
	}
	switch {
	case !positive(c.FallbackFPS):
		return invalid("fallback_fps must be positive, got %v", c.FallbackFPS)
	case !positive(c.YawOK):
		return invalid("yaw_ok must be positive, got %v", c.YawOK)
	case !positive(c.PitchOK):
		return invalid("pitch_ok must be positive, got %v", c.PitchOK)
	case !unit(c.PoseFallbackFloor):
		return invalid("pose_fallback_floor must be within [0,1], got %v", c.PoseFallbackFloor)
	case !unit(c.LowAttention):
		return invalid("low_attention must be within [0,1], got %v", c.LowAttention)
	case !unit(c.LowEngagement):
		return invalid("low_engagement must be within [0,1], got %v", c.LowEngagement)
	case c.HighlightLimit < 0:
		return invalid("highlight_limit must not be negative, got %d", c.HighlightLimit)
	case c.MinHighlightWindow < 0 || math.IsNaN(c.MinHighlightWindow):
		return invalid("min_highlight_window must not be negative, got %v", c.MinHighlightWindow)
	}
	_, _, err := normalizeWeights(c.WeightAttention, c.WeightAffect)
	return err
}

// ValidateSampleSec checks a sampling period against the configured range.
func (c Config) ValidateSampleSec(sampleSec float64) error {
	if !positive(sampleSec) {
		return invalid("sample_sec must be positive, got %v", sampleSec)
	}
	if sampleSec < c.MinSampleSec || sampleSec > c.MaxSampleSec {
		return invalid("sample_sec %v outside [%v, %v]", sampleSec, c.MinSampleSec, c.MaxSampleSec)
	}
	return nil
}

// normalizeWeights rescales a pair of weights so that they sum to one.
func normalizeWeights(attention, affect float64) (float64, float64, error) {
	if !unit(attention) || !unit(affect) {
		return 0, 0, invalid("weights must be within [0,1], got attention=%v affect=%v", attention, affect)
	}
	sum := attention + affect
	if sum == 0 {
		return 0, 0, invalid("weights must not both be zero")
	}
	return attention / sum, affect / sum, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
