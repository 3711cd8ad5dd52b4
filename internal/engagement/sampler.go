package engagement

import "math"

// DefaultFallbackFPS is assumed when the container does not report a frame rate.
const DefaultFallbackFPS = 25.0

// Sampler decides which decoded frames are forwarded to analysis.
type Sampler struct {
	fps  float64
	step int
}

func NewSampler(fps, sampleSec, fallbackFPS float64) Sampler {
	if fallbackFPS <= 0 || math.IsNaN(fallbackFPS) {
		fallbackFPS = DefaultFallbackFPS
	}
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		fps = fallbackFPS
	}
	step := int(math.Round(fps * sampleSec))
	if step < 1 {
		step = 1
	}
	return Sampler{fps: fps, step: step}
}

func (s Sampler) FPS() float64 { return s.fps }

func (s Sampler) Step() int { return s.step }

// Selects reports whether the frame at 0-based index i is analyzed.
func (s Sampler) Selects(i int) bool {
	return i >= 0 && i%s.step == 0
}

// Timestamp converts a frame index to seconds.
func (s Sampler) Timestamp(i int) float64 {
	return float64(i) / s.fps
}

// Expected is the number of frames selected from a video of total frames.
func (s Sampler) Expected(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + s.step - 1) / s.step
}
