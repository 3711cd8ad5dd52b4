package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kdimtricp/lecturepulse/internal/analysis"
	"github.com/kdimtricp/lecturepulse/internal/engagement"
)

// RenderTimeline writes an HTML page plotting engagement and attention over
// time with peaks and dips marked on the engagement series.
func RenderTimeline(w io.Writer, title string, artifact analysis.Artifact) error {
	x := make([]string, len(artifact.Frames))
	engagementData := make([]opts.LineData, len(artifact.Frames))
	attentionData := make([]opts.LineData, len(artifact.Frames))
	for i, f := range artifact.Frames {
		x[i] = engagement.FormatTimestamp(f.Timestamp)
		engagementData[i] = opts.LineData{Value: round3(f.EngagementRatio)}
		attentionData[i] = opts.LineData{Value: round3(f.AttentionRatio)}
	}

	summary := artifact.Summary
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("frames=%d faces=%d score=%.2f", summary.FramesAnalyzed, summary.FacesTotal, summary.Score),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "time", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1, Name: "ratio"}),
	)

	marks := append(markPoints(artifact.Frames, artifact.Highlights.Peaks, "pin"),
		markPoints(artifact.Frames, artifact.Highlights.Dips, "arrow")...)

	line.SetXAxis(x).
		AddSeries("engagement", engagementData,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithMarkPointNameCoordItemOpts(marks...),
		).
		AddSeries("attention", attentionData,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("rendering timeline: %w", err)
	}
	return nil
}

// markPoints places one marker per highlight on the nearest sampled frame.
func markPoints(frames []engagement.FrameObservation, highlights []engagement.TimelineHighlight, symbol string) []opts.MarkPointNameCoordItem {
	items := make([]opts.MarkPointNameCoordItem, 0, len(highlights))
	for _, h := range highlights {
		i := nearestFrame(frames, h.Timestamp)
		if i < 0 {
			continue
		}
		items = append(items, opts.MarkPointNameCoordItem{
			Name:       h.Label,
			Coordinate: []interface{}{engagement.FormatTimestamp(frames[i].Timestamp), round3(h.EngagementRatio)},
			Symbol:     symbol,
			SymbolSize: 40,
		})
	}
	return items
}

func nearestFrame(frames []engagement.FrameObservation, ts float64) int {
	best := -1
	bestDist := 0.0
	for i, f := range frames {
		d := f.Timestamp - ts
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func round3(v float64) float64 {
	return float64(int(v*1000+0.5)) / 1000
}
