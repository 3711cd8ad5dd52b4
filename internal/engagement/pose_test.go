package engagement

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

func TestPoseScorerWithinThresholds(t *testing.T) {
	s := NewPoseScorer(30, 20, 0.4)
	for yaw := -30.0; yaw <= 30; yaw += 2.5 {
		for pitch := -20.0; pitch <= 20; pitch += 2.5 {
			att := s.Attention(yaw, pitch)
			gaze := s.Gaze(yaw, pitch)
			assert.GreaterOrEqual(t, att, 0.0, "yaw=%v pitch=%v", yaw, pitch)
			assert.LessOrEqual(t, att, 1.0, "yaw=%v pitch=%v", yaw, pitch)
			assert.Equal(t, GazeScreen, gaze, "yaw=%v pitch=%v", yaw, pitch)
			// The linear falloff reaches zero exactly at either threshold.
			if math.Abs(yaw) < 30 && math.Abs(pitch) < 20 {
				assert.Greater(t, att, 0.0, "yaw=%v pitch=%v", yaw, pitch)
			}
		}
	}
	assert.Equal(t, 1.0, s.Attention(0, 0))
}

func TestPoseScorerAttention(t *testing.T) {
	s := NewPoseScorer(30, 20, 0.4)
	tests := []struct {
		name       string
		yaw, pitch float64
		want       float64
	}{
		{"frontal", 0, 0, 1},
		{"half yaw", 15, 0, 0.5},
		{"half both", -15, 10, 0.25},
		{"yaw at threshold", 30, 0, 0},
		{"pitch at threshold", 0, -20, 0},
		{"yaw beyond", 45, 0, 0},
		{"pitch beyond", 0, -25, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Attention(tt.yaw, tt.pitch), 1e-9)
		})
	}
}

func TestPoseScorerGaze(t *testing.T) {
	s := NewPoseScorer(30, 20, 0.4)
	tests := []struct {
		name       string
		yaw, pitch float64
		want       GazeTarget
	}{
		{"screen", 10, -5, GazeScreen},
		{"left", 40, 0, GazeLeft},
		{"left wins over pitch", 40, 50, GazeLeft},
		{"right", -40, 0, GazeRight},
		{"up", 0, -30, GazeUp},
		{"down", 0, 30, GazeDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Gaze(tt.yaw, tt.pitch))
		})
	}
}

func TestPoseScorerWithoutPose(t *testing.T) {
	s := NewPoseScorer(30, 20, 0.4)

	att, gaze := s.Score(nil, 0.2)
	assert.Equal(t, 0.4, att)
	assert.Equal(t, GazeScreen, gaze)

	att, _ = s.Score(nil, 0.9)
	assert.Equal(t, 0.9, att)

	att, _ = s.Score(nil, 1.7)
	assert.Equal(t, 1.0, att)

	att, gaze = s.Score(&models.HeadPose{Yaw: 60}, 0.99)
	assert.Equal(t, 0.0, att)
	assert.Equal(t, GazeLeft, gaze)
}
