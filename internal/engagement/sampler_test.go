package engagement

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSamplerStep(t *testing.T) {
	tests := []struct {
		name      string
		fps       float64
		sampleSec float64
		wantStep  int
		wantFPS   float64
	}{
		{"25fps every second", 25, 1.0, 25, 25},
		{"30fps half second", 30, 0.5, 15, 30},
		{"rounds", 29.97, 1.0, 30, 29.97},
		{"tiny period clamps to one", 25, 0.01, 1, 25},
		{"zero fps falls back", 0, 1.0, 25, 25},
		{"nan fps falls back", math.NaN(), 2.0, 50, 25},
		{"negative fps falls back", -3, 1.0, 25, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSampler(tt.fps, tt.sampleSec, DefaultFallbackFPS)
			assert.Equal(t, tt.wantStep, s.Step())
			assert.Equal(t, tt.wantFPS, s.FPS())
		})
	}
}

func TestSamplerSelectsHundredFrames(t *testing.T) {
	s := NewSampler(25, 1.0, DefaultFallbackFPS)

	var selected []int
	for i := 0; i < 100; i++ {
		if s.Selects(i) {
			selected = append(selected, i)
		}
	}

	assert.Equal(t, []int{0, 25, 50, 75}, selected)
	assert.Equal(t, 4, s.Expected(100))
	assert.Equal(t, 0, s.Expected(0))
	assert.InDelta(t, 3.0, s.Timestamp(75), 1e-9)
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:00", FormatTimestamp(0))
	assert.Equal(t, "00:59", FormatTimestamp(59.9))
	assert.Equal(t, "01:05", FormatTimestamp(65))
	assert.Equal(t, "61:40", FormatTimestamp(3700))
	assert.Equal(t, "00:00", FormatTimestamp(-4))
}
