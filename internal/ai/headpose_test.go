package ai

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frontal() Landmarks {
	return Landmarks{
		RightEye:   Point{40, 50},
		LeftEye:    Point{80, 50},
		Nose:       Point{60, 70},
		RightMouth: Point{45, 90},
		LeftMouth:  Point{75, 90},
	}
}

func TestEstimateHeadPoseFrontal(t *testing.T) {
	pose := EstimateHeadPose(frontal())
	require.NotNil(t, pose)
	assert.InDelta(t, 0, pose.Yaw, 1e-9)
	assert.InDelta(t, 0, pose.Pitch, 1e-9)
	assert.InDelta(t, 0, pose.Roll, 1e-9)
}

func TestEstimateHeadPoseDirections(t *testing.T) {
	turned := frontal()
	turned.Nose.X += 15
	pose := EstimateHeadPose(turned)
	require.NotNil(t, pose)
	assert.Greater(t, pose.Yaw, 30.0)

	down := frontal()
	down.Nose.Y += 12
	pose = EstimateHeadPose(down)
	require.NotNil(t, pose)
	assert.Greater(t, pose.Pitch, 20.0)
	assert.InDelta(t, 0, pose.Yaw, 1e-9)

	up := frontal()
	up.Nose.Y -= 12
	pose = EstimateHeadPose(up)
	require.NotNil(t, pose)
	assert.Less(t, pose.Pitch, -20.0)
}

func TestEstimateHeadPoseRollInvariant(t *testing.T) {
	base := frontal()
	angle := 20 * math.Pi / 180
	origin := Point{60, 50}
	tilted := Landmarks{
		RightEye:   rotate(base.RightEye, origin, angle),
		LeftEye:    rotate(base.LeftEye, origin, angle),
		Nose:       rotate(base.Nose, origin, angle),
		RightMouth: rotate(base.RightMouth, origin, angle),
		LeftMouth:  rotate(base.LeftMouth, origin, angle),
	}

	pose := EstimateHeadPose(tilted)
	require.NotNil(t, pose)
	assert.InDelta(t, 20, pose.Roll, 1e-6)
	assert.InDelta(t, 0, pose.Yaw, 1e-6)
	assert.InDelta(t, 0, pose.Pitch, 1e-6)
}

func TestEstimateHeadPoseDegenerate(t *testing.T) {
	collapsed := frontal()
	collapsed.LeftEye = collapsed.RightEye
	assert.Nil(t, EstimateHeadPose(collapsed))

	flat := frontal()
	flat.RightMouth.Y, flat.LeftMouth.Y = 50, 50
	assert.Nil(t, EstimateHeadPose(flat))

	nan := frontal()
	nan.Nose.X = math.NaN()
	assert.Nil(t, EstimateHeadPose(nan))
}
