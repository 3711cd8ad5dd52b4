package analysis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kdimtricp/lecturepulse/internal/engagement"
)

// Artifact is the durable metrics file. Its field names are read by external
// tooling and must not change.
type Artifact struct {
	LectureID   string                        `json:"lecture_id"`
	SampleSec   float64                       `json:"sample_sec"`
	Frames      []engagement.FrameObservation `json:"frames"`
	Highlights  ArtifactHighlights            `json:"highlights"`
	Suggestions []string                      `json:"suggestions"`
	Summary     ArtifactSummary               `json:"summary"`
}

type ArtifactHighlights struct {
	Peaks []engagement.TimelineHighlight `json:"peaks"`
	Dips  []engagement.TimelineHighlight `json:"dips"`
}

// ArtifactSummary is the summary as stored in the artifact and the database.
type ArtifactSummary struct {
	LectureID string `json:"lecture_id"`
	engagement.AnalysisSummary
}

func (r *Report) Artifact() Artifact {
	return Artifact{
		LectureID: r.VideoID,
		SampleSec: r.SampleSec,
		Frames:    r.Frames,
		Highlights: ArtifactHighlights{
			Peaks: r.Summary.TopPeaks,
			Dips:  r.Summary.TopDips,
		},
		Suggestions: r.Summary.Suggestions,
		Summary:     r.SummaryRecord(),
	}
}

func (r *Report) SummaryRecord() ArtifactSummary {
	return ArtifactSummary{LectureID: r.VideoID, AnalysisSummary: r.Summary}
}

// SummaryJSON is the compact summary persisted next to the result row.
func (r *Report) SummaryJSON() (json.RawMessage, error) {
	data, err := json.Marshal(r.SummaryRecord())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return data, nil
}

// ArtifactName is the metrics file name for a run finished at t.
func ArtifactName(lectureID string, t time.Time) string {
	return fmt.Sprintf("%s_%s.json", lectureID, t.UTC().Format("20060102-150405"))
}
