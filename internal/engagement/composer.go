package engagement

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

// Composer blends attention and affect into engagement and rolls faces up
// into frame and video aggregates.
type Composer struct {
	weightAttention float64
	weightAffect    float64
}

// NewComposer normalizes the weights so that engagement stays within [0,1].
func NewComposer(weightAttention, weightAffect float64) (*Composer, error) {
	wa, wf, err := normalizeWeights(weightAttention, weightAffect)
	if err != nil {
		return nil, err
	}
	return &Composer{weightAttention: wa, weightAffect: wf}, nil
}

func (c *Composer) Engagement(attention, affect float64) float64 {
	return clamp01(c.weightAttention*attention + c.weightAffect*affect)
}

// Frame builds the observation for one sampled frame.
func (c *Composer) Frame(index int, ts float64, faces []FaceObservation) FrameObservation {
	frame := FrameObservation{
		Index:     index,
		Timestamp: ts,
		Faces:     faces,
		FaceCount: len(faces),
	}
	if frame.Faces == nil {
		frame.Faces = []FaceObservation{}
	}
	if len(faces) == 0 {
		return frame
	}

	attention := make([]float64, len(faces))
	for i, f := range faces {
		attention[i] = f.Attention
		if models.IsPositiveEmotion(f.TopEmotion.Label) {
			frame.PositiveFaces++
		}
	}
	frame.EngagementRatio = float64(frame.PositiveFaces) / float64(frame.FaceCount)
	frame.AttentionRatio = clamp01(stat.Mean(attention, nil))
	return frame
}

// Summarize aggregates the meaningful frames of a run. Frames without faces
// do not dilute the averages; a run with none yields zero scores and an
// empty histogram.
func (c *Composer) Summarize(frames []FrameObservation) Aggregate {
	meaningful := Meaningful(frames)
	agg := Aggregate{
		FramesAnalyzed:   len(frames),
		EmotionHistogram: models.Distribution{},
	}
	if len(meaningful) == 0 {
		return agg
	}

	attention := make([]float64, len(meaningful))
	engagement := make([]float64, len(meaningful))
	mass := map[string][]float64{}
	for i, f := range meaningful {
		attention[i] = f.AttentionRatio
		engagement[i] = f.EngagementRatio
		agg.FacesTotal += f.FaceCount
		for _, face := range f.Faces {
			for _, label := range face.Emotions.Labels() {
				mass[label] = append(mass[label], face.Emotions[label])
			}
		}
	}

	agg.AvgAttention = clamp01(stat.Mean(attention, nil))
	agg.AvgEngagement = clamp01(stat.Mean(engagement, nil))
	agg.Score = clamp01(0.7*agg.AvgEngagement + 0.3*agg.AvgAttention)
	agg.EmotionHistogram = histogram(mass)
	return agg
}

// histogram normalizes accumulated emotion mass. Labels are visited in sorted
// order so the result does not depend on map iteration.
func histogram(mass map[string][]float64) models.Distribution {
	totals := make(models.Distribution, len(mass))
	for label, values := range mass {
		totals[label] = floats.Sum(values)
	}
	labels := totals.Labels()
	total := 0.0
	for _, label := range labels {
		total += totals[label]
	}
	if total <= 0 {
		return models.Distribution{}
	}
	hist := make(models.Distribution, len(labels))
	for _, label := range labels {
		hist[label] = totals[label] / total
	}
	return hist
}
