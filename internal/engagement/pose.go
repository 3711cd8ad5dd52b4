package engagement

import (
	"math"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

// PoseScorer turns head-pose angles into attention and a gaze target.
type PoseScorer struct {
	yawOK   float64
	pitchOK float64
	floor   float64
}

func NewPoseScorer(yawOK, pitchOK, fallbackFloor float64) PoseScorer {
	return PoseScorer{yawOK: yawOK, pitchOK: pitchOK, floor: fallbackFloor}
}

// Attention is the product of the per-axis scores, so both axes must be in
// range for a high value.
func (s PoseScorer) Attention(yaw, pitch float64) float64 {
	attYaw := math.Max(0, 1-math.Abs(yaw)/s.yawOK)
	attPitch := math.Max(0, 1-math.Abs(pitch)/s.pitchOK)
	return attYaw * attPitch
}

func (s PoseScorer) Gaze(yaw, pitch float64) GazeTarget {
	switch {
	case math.Abs(yaw) <= s.yawOK && math.Abs(pitch) <= s.pitchOK:
		return GazeScreen
	case yaw > s.yawOK:
		return GazeLeft
	case yaw < -s.yawOK:
		return GazeRight
	case pitch < -s.pitchOK:
		return GazeUp
	default:
		return GazeDown
	}
}

// Score rates a detection. Without a pose the detector confidence, raised to
// the fallback floor, stands in for attention and the gaze is taken from zero
// angles.
func (s PoseScorer) Score(pose *models.HeadPose, confidence float64) (float64, GazeTarget) {
	if pose == nil {
		return clamp01(math.Max(confidence, s.floor)), s.Gaze(0, 0)
	}
	return s.Attention(pose.Yaw, pose.Pitch), s.Gaze(pose.Yaw, pose.Pitch)
}
