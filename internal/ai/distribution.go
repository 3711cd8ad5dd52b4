package ai

import (
	"fmt"
	"math"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

// Softmax converts raw classifier logits to probabilities.
func Softmax(logits []float32) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	peak := math.Inf(-1)
	for _, v := range logits {
		peak = math.Max(peak, float64(v))
	}
	total := 0.0
	for i, v := range logits {
		out[i] = math.Exp(float64(v) - peak)
		total += out[i]
	}
	for i := range out {
		out[i] /= total
	}
	return out
}

// NewPrediction maps per-label scores onto the fixed label set and normalizes
// them. Unknown labels are ignored and missing ones count as zero.
func NewPrediction(scores map[string]float64) (Prediction, error) {
	dist := make(models.Distribution, len(models.EmotionLabels))
	total := 0.0
	for _, label := range models.EmotionLabels {
		v := scores[label]
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Prediction{}, fmt.Errorf("invalid score %v for %q", v, label)
		}
		dist[label] = v
		total += v
	}
	if total <= 0 {
		return Prediction{}, fmt.Errorf("emotion scores carry no mass")
	}
	for label := range dist {
		dist[label] /= total
	}
	top, prob := dist.Top()
	return Prediction{Emotions: dist, Top: top, TopProb: prob}, nil
}

// PredictionFromLogits builds a prediction from logits in EmotionLabels order.
func PredictionFromLogits(logits []float32) (Prediction, error) {
	if len(logits) != len(models.EmotionLabels) {
		return Prediction{}, fmt.Errorf("expected %d logits, got %d", len(models.EmotionLabels), len(logits))
	}
	probs := Softmax(logits)
	scores := make(map[string]float64, len(probs))
	for i, label := range models.EmotionLabels {
		scores[label] = probs[i]
	}
	return NewPrediction(scores)
}
