package database

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

func insertLecture(t *testing.T, db *DB) *models.Lecture {
	t.Helper()
	lecture := models.NewLecture("Chemistry", "Science", "c.mp4", "video/mp4", 42)
	require.NoError(t, NewLectureRepository(db).InsertLecture(context.Background(), lecture))
	return lecture
}

func TestAnalysisResultRepo_SaveAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	lecture := insertLecture(t, db)
	repo := NewAnalysisResultRepo(db)
	ctx := context.Background()

	result := &models.AnalysisResult{
		LectureID:     lecture.ID,
		AvgEngagement: 0.42,
		AvgAttention:  0.61,
		Score:         0.7*0.42 + 0.3*0.61,
		MetricsPath:   "/data/metrics/x.json",
		SummaryJSON:   json.RawMessage(`{"frames_analyzed": 12, "faces_total": 30}`),
	}
	require.NoError(t, repo.SaveResult(ctx, result))
	assert.NotEmpty(t, result.ID)

	got, err := repo.GetByLectureID(ctx, lecture.ID)
	require.NoError(t, err)
	assert.Equal(t, result.ID, got.ID)
	assert.InDelta(t, 0.42, got.AvgEngagement, 1e-12)
	assert.Equal(t, result.MetricsPath, got.MetricsPath)
	assert.JSONEq(t, string(result.SummaryJSON), string(got.SummaryJSON))
}

func TestAnalysisResultRepo_ReanalysisReplacesRow(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	lecture := insertLecture(t, db)
	repo := NewAnalysisResultRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.SaveResult(ctx, &models.AnalysisResult{LectureID: lecture.ID, Score: 0.1, MetricsPath: "a.json"}))
	require.NoError(t, repo.SaveResult(ctx, &models.AnalysisResult{LectureID: lecture.ID, Score: 0.9, MetricsPath: "b.json"}))

	got, err := repo.GetByLectureID(ctx, lecture.ID)
	require.NoError(t, err)
	assert.Equal(t, "b.json", got.MetricsPath)
	assert.InDelta(t, 0.9, got.Score, 1e-12)
	assert.Nil(t, got.SummaryJSON)

	var count int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM analysis_results`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestAnalysisResultRepo_NotFoundAndInvalid(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewAnalysisResultRepo(db)
	ctx := context.Background()

	_, err := repo.GetByLectureID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.True(t, errors.Is(err, ErrNotFound))

	lecture := insertLecture(t, db)
	err = repo.SaveResult(ctx, &models.AnalysisResult{LectureID: lecture.ID, SummaryJSON: json.RawMessage(`{broken`)})
	assert.Error(t, err)
}

func TestMigrateVersion(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	require.NoError(t, db.MigrateUp())
}

func TestRebind(t *testing.T) {
	sqlite := &DB{dbType: TypeSQLite}
	pg := &DB{dbType: TypePostgres}
	q := `UPDATE lectures SET status = ?, progress = ? WHERE id = ?`

	assert.Equal(t, q, sqlite.rebind(q))
	assert.Equal(t, `UPDATE lectures SET status = $1, progress = $2 WHERE id = $3`, pg.rebind(q))
}
