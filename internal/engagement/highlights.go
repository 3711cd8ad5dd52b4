package engagement

import (
	"fmt"
	"math"
	"sort"
)

const (
	peakLabel = "Peak engagement"
	dipLabel  = "Engagement dip"
)

// HighlightWindow is the minimum separation between two highlights.
func HighlightWindow(sampleSec, minWindow float64) float64 {
	return math.Max(3*sampleSec, minWindow)
}

// HighlightExtractor picks temporally spread peaks and dips from a frame series.
type HighlightExtractor struct {
	window float64
	limit  int
}

func NewHighlightExtractor(window float64, limit int) HighlightExtractor {
	return HighlightExtractor{window: window, limit: limit}
}


// Peaks returns up to limit highlights with the highest engagement ratio.
func (e HighlightExtractor) Peaks(frames []FrameObservation) []TimelineHighlight {
	return e.extract(frames, true, peakLabel)
}

// Dips returns up to limit highlights with the lowest engagement ratio.
func (e HighlightExtractor) Dips(frames []FrameObservation) []TimelineHighlight {
	return e.extract(frames, false, dipLabel)
}

func (e HighlightExtractor) extract(frames []FrameObservation, descending bool, prefix string) []TimelineHighlight {
	out := []TimelineHighlight{}
	if e.limit <= 0 {
		return out
	}

	candidates := Meaningful(frames)
	sort.SliceStable(candidates, func(i, j int) bool {
		if descending {
			return candidates[i].EngagementRatio > candidates[j].EngagementRatio
		}
		return candidates[i].EngagementRatio < candidates[j].EngagementRatio
	})

	var selected []float64
	for _, f := range candidates {
		if len(out) >= e.limit {
			break
		}
		if !e.separated(f.Timestamp, selected) {
			continue
		}
		selected = append(selected, f.Timestamp)
		out = append(out, e.highlight(f, prefix))
	}
	return out
}

func (e HighlightExtractor) separated(ts float64, selected []float64) bool {
	for _, s := range selected {
		if math.Abs(ts-s) < e.window {
			return false
		}
	}
	return true
}

func (e HighlightExtractor) highlight(f FrameObservation, prefix string) TimelineHighlight {
	half := e.window / 2
	return TimelineHighlight{
		Timestamp:       f.Timestamp,
		WindowStart:     math.Max(f.Timestamp-half, 0),
		WindowEnd:       f.Timestamp + half,
		EngagementRatio: f.EngagementRatio,
		AttentionRatio:  f.AttentionRatio,
		Label:           fmt.Sprintf("%s @ %s", prefix, FormatTimestamp(f.Timestamp)),
	}
}
