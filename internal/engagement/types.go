package engagement

import "github.com/kdimtricp/lecturepulse/internal/models"

// GazeTarget is a coarse classification of where a face is looking.
type GazeTarget string

const (
	GazeScreen GazeTarget = "screen"
	GazeLeft   GazeTarget = "left"
	GazeRight  GazeTarget = "right"
	GazeUp     GazeTarget = "up"
	GazeDown   GazeTarget = "down"
)

type TopEmotion struct {
	Label string  `json:"label"`
	Prob  float64 `json:"prob"`
}

// FaceObservation is one detected face within one sampled frame.
type FaceObservation struct {
	BBox       *models.BoundingBox `json:"bbox"`
	Yaw        *float64            `json:"yaw_deg"`
	Pitch      *float64            `json:"pitch_deg"`
	Roll       *float64            `json:"roll_deg"`
	Attention  float64             `json:"attention"`
	Affect     float64             `json:"affect"`
	Engagement float64             `json:"engagement"`
	TopEmotion TopEmotion          `json:"top_emotion"`
	Emotions   models.Distribution `json:"emotions"`
	GazeTarget GazeTarget          `json:"looking_target"`
	Degraded   bool                `json:"degraded,omitempty"`
}

// FrameObservation aggregates the faces of one sampled frame.
type FrameObservation struct {
	Index           int               `json:"frame_index"`
	Timestamp       float64           `json:"ts_sec"`
	Faces           []FaceObservation `json:"faces"`
	FaceCount       int               `json:"face_count"`
	PositiveFaces   int               `json:"positive_faces"`
	EngagementRatio float64           `json:"engagement_ratio"`
	AttentionRatio  float64           `json:"attention_ratio"`
}

// TimelineHighlight marks a notable peak or dip.
type TimelineHighlight struct {
	Timestamp       float64 `json:"ts_sec"`
	WindowStart     float64 `json:"window_start_sec"`
	WindowEnd       float64 `json:"window_end_sec"`
	EngagementRatio float64 `json:"engagement_ratio"`
	AttentionRatio  float64 `json:"attention_ratio"`
	Label           string  `json:"label"`
}

// Aggregate is the whole-video rollup of a frame sequence.
type Aggregate struct {
	FramesAnalyzed   int                 `json:"frames_analyzed"`
	FacesTotal       int                 `json:"faces_total"`
	AvgAttention     float64             `json:"avg_attention"`
	AvgEngagement    float64             `json:"avg_engagement"`
	Score            float64             `json:"score"`
	EmotionHistogram models.Distribution `json:"emotion_hist"`
}

// AnalysisSummary is the report headline handed to persistence.
type AnalysisSummary struct {
	Aggregate
	TopPeaks    []TimelineHighlight `json:"top_peaks"`
	TopDips     []TimelineHighlight `json:"top_dips"`
	Suggestions []string            `json:"suggestions"`
}

// Meaningful returns the frames that contain at least one face.
func Meaningful(frames []FrameObservation) []FrameObservation {
	out := make([]FrameObservation, 0, len(frames))
	for _, f := range frames {
		if f.FaceCount > 0 {
			out = append(out, f)
		}
	}
	return out
}
