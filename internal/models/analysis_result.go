package models

import (
	"encoding/json"
	"time"
)

// AnalysisResult is the persisted outcome of one lecture analysis.
type AnalysisResult struct {
	ID            string          `json:"id"`
	LectureID     string          `json:"lecture_id"`
	AvgEngagement float64         `json:"avg_engagement"`
	AvgAttention  float64         `json:"avg_attention"`
	Score         float64         `json:"score"`
	MetricsPath   string          `json:"metrics_path"`
	SummaryJSON   json.RawMessage `json:"summary"`
	CreatedAt     time.Time       `json:"created_at"`
}
