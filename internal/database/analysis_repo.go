package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

// AnalysisResultRepo stores one result row per lecture; a re-analysis
// replaces the previous row.
type AnalysisResultRepo struct {
	db *DB
}

func NewAnalysisResultRepo(db *DB) *AnalysisResultRepo {
	return &AnalysisResultRepo{db: db}
}

func (r *AnalysisResultRepo) SaveResult(ctx context.Context, result *models.AnalysisResult) error {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	var summary any
	if len(result.SummaryJSON) > 0 {
		if !json.Valid(result.SummaryJSON) {
			return fmt.Errorf("summary is not valid JSON")
		}
		summary = string(result.SummaryJSON)
	}

	query := r.db.rebind(`
		INSERT INTO analysis_results (
			id, lecture_id, avg_engagement, avg_attention, score,
			metrics_path, summary_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (lecture_id)
		DO UPDATE SET
			id = EXCLUDED.id,
			avg_engagement = EXCLUDED.avg_engagement,
			avg_attention = EXCLUDED.avg_attention,
			score = EXCLUDED.score,
			metrics_path = EXCLUDED.metrics_path,
			summary_json = EXCLUDED.summary_json,
			created_at = EXCLUDED.created_at`)

	_, err := r.db.conn.ExecContext(ctx, query,
		result.ID,
		result.LectureID,
		result.AvgEngagement,
		result.AvgAttention,
		result.Score,
		result.MetricsPath,
		summary,
		result.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis result: %w", err)
	}
	return nil
}

func (r *AnalysisResultRepo) GetByLectureID(ctx context.Context, lectureID string) (*models.AnalysisResult, error) {
	query := r.db.rebind(`
		SELECT id, lecture_id, avg_engagement, avg_attention, score,
			   metrics_path, summary_json, created_at
		FROM analysis_results
		WHERE lecture_id = ?`)

	var (
		result  models.AnalysisResult
		summary sql.NullString
	)
	err := r.db.conn.QueryRowContext(ctx, query, lectureID).Scan(
		&result.ID,
		&result.LectureID,
		&result.AvgEngagement,
		&result.AvgAttention,
		&result.Score,
		&result.MetricsPath,
		&summary,
		&result.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis for lecture %s: %w", lectureID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis result: %w", err)
	}
	if summary.Valid {
		result.SummaryJSON = json.RawMessage(summary.String)
	}
	return &result, nil
}
