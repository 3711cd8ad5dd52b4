package engagement

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(ratios ...float64) []FrameObservation {
	frames := make([]FrameObservation, len(ratios))
	for i, r := range ratios {
		frames[i] = FrameObservation{
			Index:           i * 25,
			Timestamp:       float64(i),
			FaceCount:       1,
			EngagementRatio: r,
			AttentionRatio:  0.5,
		}
	}
	return frames
}

func TestHighlightWindow(t *testing.T) {
	assert.Equal(t, 3.0, HighlightWindow(1.0, 2.0))
	assert.Equal(t, 2.0, HighlightWindow(0.5, 2.0))
	assert.Equal(t, 15.0, HighlightWindow(5, 2.0))
}

func TestHighlightExtractorPeaks(t *testing.T) {
	e := NewHighlightExtractor(3, 3)
	frames := series(0.1, 0.9, 0.8, 0.2, 0.3, 0.7, 0.6, 0.1, 0.5, 0.4)

	peaks := e.Peaks(frames)
	require.Len(t, peaks, 3)
	assert.Equal(t, 1.0, peaks[0].Timestamp)
	assert.Equal(t, 0.9, peaks[0].EngagementRatio)
	assert.Equal(t, 5.0, peaks[1].Timestamp)
	assert.Equal(t, 8.0, peaks[2].Timestamp)
	assert.Equal(t, "Peak engagement @ 00:01", peaks[0].Label)
	assert.Equal(t, 0.0, peaks[0].WindowStart)
	assert.Equal(t, 2.5, peaks[0].WindowEnd)
	assert.Equal(t, 3.5, peaks[1].WindowStart)
}

func TestHighlightExtractorDips(t *testing.T) {
	e := NewHighlightExtractor(3, 3)
	frames := series(0.1, 0.9, 0.8, 0.2, 0.3, 0.7, 0.6, 0.1, 0.5, 0.4)

	dips := e.Dips(frames)
	require.Len(t, dips, 3)
	assert.Equal(t, 0.0, dips[0].Timestamp)
	assert.Equal(t, 7.0, dips[1].Timestamp)
	assert.Equal(t, 3.0, dips[2].Timestamp)
	assert.Equal(t, "Engagement dip @ 00:00", dips[0].Label)
}

func TestHighlightExtractorTiesKeepFrameOrder(t *testing.T) {
	e := NewHighlightExtractor(2, 5)
	peaks := e.Peaks(series(0.5, 0.5, 0.5, 0.5, 0.5))
	require.Len(t, peaks, 3)
	assert.Equal(t, []float64{0, 2, 4}, []float64{peaks[0].Timestamp, peaks[1].Timestamp, peaks[2].Timestamp})
}

func TestHighlightExtractorSkipsEmptyFrames(t *testing.T) {
	e := NewHighlightExtractor(3, 3)
	frames := series(0.2, 0.4)
	frames = append(frames, FrameObservation{Timestamp: 10})

	dips := e.Dips(frames)
	require.Len(t, dips, 1)
	assert.Equal(t, 0.0, dips[0].Timestamp)

	assert.Empty(t, e.Peaks(nil))
	assert.NotNil(t, e.Peaks(nil))
	assert.Empty(t, NewHighlightExtractor(3, 0).Peaks(frames))
}

func TestHighlightExtractorSeparation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		var frames []FrameObservation
		ts := 0.0
		for i := 0; i < 60; i++ {
			ts += 0.1 + rng.Float64()*2
			frames = append(frames, FrameObservation{
				Index:           i,
				Timestamp:       ts,
				FaceCount:       1 + rng.Intn(3),
				EngagementRatio: float64(rng.Intn(5)) / 4,
			})
		}
		window := HighlightWindow(0.5+rng.Float64()*2, 2.0)
		e := NewHighlightExtractor(window, 1+rng.Intn(6))
		for _, hs := range [][]TimelineHighlight{e.Peaks(frames), e.Dips(frames)} {
			for i := range hs {
				for j := i + 1; j < len(hs); j++ {
					assert.GreaterOrEqual(t, math.Abs(hs[i].Timestamp-hs[j].Timestamp), window)
				}
			}
		}
	}
}
