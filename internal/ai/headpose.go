package ai

import (
	"math"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

// Point is a landmark in pixel coordinates.
type Point struct {
	X, Y float64
}

// Landmarks are the five points produced by YuNet, in its output order.
type Landmarks struct {
	RightEye   Point
	LeftEye    Point
	Nose       Point
	RightMouth Point
	LeftMouth  Point
}

const (
	minEyeDistance = 2.0
	yawGain        = 2.0
	pitchGain      = 3.0

	// Nose sits about halfway between eye line and mouth line on a level face.
	neutralNoseRatio = 0.5
)

// EstimateHeadPose approximates yaw, pitch and roll from five facial
// landmarks. It returns nil when the geometry is degenerate.
//
// Positive yaw means the subject turned to their left (nose towards image
// right) and positive pitch means looking down, matching the gaze rules.
func EstimateHeadPose(lm Landmarks) *models.HeadPose {
	dx := lm.LeftEye.X - lm.RightEye.X
	dy := lm.LeftEye.Y - lm.RightEye.Y
	eyeDist := math.Hypot(dx, dy)
	if eyeDist < minEyeDistance || anyNaN(lm) {
		return nil
	}
	roll := math.Atan2(dy, dx)

	eyeMid := Point{(lm.LeftEye.X + lm.RightEye.X) / 2, (lm.LeftEye.Y + lm.RightEye.Y) / 2}
	mouthMid := Point{(lm.LeftMouth.X + lm.RightMouth.X) / 2, (lm.LeftMouth.Y + lm.RightMouth.Y) / 2}

	// Work in a frame aligned with the eye line.
	nose := rotate(lm.Nose, eyeMid, -roll)
	mouth := rotate(mouthMid, eyeMid, -roll)

	faceHeight := mouth.Y - eyeMid.Y
	if faceHeight < minEyeDistance/2 {
		return nil
	}

	nx := (nose.X - eyeMid.X) / eyeDist
	ny := (nose.Y-eyeMid.Y)/faceHeight - neutralNoseRatio

	return &models.HeadPose{
		Yaw:   degrees(math.Atan(nx * yawGain)),
		Pitch: degrees(math.Atan(ny * pitchGain)),
		Roll:  degrees(roll),
	}
}

func rotate(p, origin Point, angle float64) Point {
	sin, cos := math.Sincos(angle)
	x, y := p.X-origin.X, p.Y-origin.Y
	return Point{origin.X + x*cos - y*sin, origin.Y + x*sin + y*cos}
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func anyNaN(lm Landmarks) bool {
	for _, p := range []Point{lm.RightEye, lm.LeftEye, lm.Nose, lm.RightMouth, lm.LeftMouth} {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			return true
		}
	}
	return false
}
