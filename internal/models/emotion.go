package models

import "sort"

// Emotion labels produced by every classifier.
const (
	EmotionAngry    = "angry"
	EmotionDisgust  = "disgust"
	EmotionFear     = "fear"
	EmotionHappy    = "happy"
	EmotionSad      = "sad"
	EmotionSurprise = "surprise"
	EmotionNeutral  = "neutral"
)

// EmotionLabels is the fixed label set, in classifier output order.
var EmotionLabels = []string{
	EmotionAngry,
	EmotionDisgust,
	EmotionFear,
	EmotionHappy,
	EmotionSad,
	EmotionSurprise,
	EmotionNeutral,
}

// Distribution maps an emotion label to its probability.
type Distribution map[string]float64

// NeutralDistribution is used when a face could not be classified.
func NeutralDistribution() Distribution {
	return Distribution{EmotionNeutral: 1.0}
}

// Labels returns the keys in sorted order so that sums over a distribution
// are reproducible bit for bit.
func (d Distribution) Labels() []string {
	labels := make([]string, 0, len(d))
	for label := range d {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Top returns the most probable label. Ties resolve to the label that sorts first.
func (d Distribution) Top() (string, float64) {
	best, bestProb := "", -1.0
	for _, label := range d.Labels() {
		if p := d[label]; p > bestProb {
			best, bestProb = label, p
		}
	}
	if best == "" {
		return EmotionNeutral, 0
	}
	return best, bestProb
}

// Sum returns the total probability mass.
func (d Distribution) Sum() float64 {
	total := 0.0
	for _, label := range d.Labels() {
		total += d[label]
	}
	return total
}

func IsPositiveEmotion(label string) bool {
	return label == EmotionHappy || label == EmotionSurprise
}
