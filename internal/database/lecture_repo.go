package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

type LectureRepository struct {
	db *DB
}

func NewLectureRepository(db *DB) *LectureRepository {
	return &LectureRepository{db: db}
}

const lectureColumns = `id, title, subject, filename, content_type, size, status, progress, error_message, upload_time, updated_at`

func (r *LectureRepository) InsertLecture(ctx context.Context, lecture *models.Lecture) error {
	if lecture.UpdatedAt.IsZero() {
		lecture.UpdatedAt = lecture.UploadTime
	}
	query := r.db.rebind(`INSERT INTO lectures (` + lectureColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.conn.ExecContext(ctx, query,
		lecture.ID,
		lecture.Title,
		lecture.Subject,
		lecture.Filename,
		lecture.ContentType,
		lecture.Size,
		string(lecture.Status),
		lecture.Progress,
		lecture.ErrorMessage,
		lecture.UploadTime.UTC(),
		lecture.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lecture: %w", err)
	}
	return nil
}

func (r *LectureRepository) GetLectureByID(ctx context.Context, id string) (*models.Lecture, error) {
	query := r.db.rebind(`SELECT ` + lectureColumns + ` FROM lectures WHERE id = ?`)
	lecture, err := scanLecture(r.db.conn.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lecture %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lecture: %w", err)
	}
	return lecture, nil
}

// ListLectures returns lectures newest first.
func (r *LectureRepository) ListLectures(ctx context.Context) ([]models.Lecture, error) {
	query := `SELECT ` + lectureColumns + ` FROM lectures ORDER BY upload_time DESC`
	rows, err := r.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list lectures: %w", err)
	}
	defer rows.Close()

	lectures := []models.Lecture{}
	for rows.Next() {
		lecture, err := scanLecture(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lecture: %w", err)
		}
		lectures = append(lectures, *lecture)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lectures: %w", err)
	}
	return lectures, nil
}

// UpdateStatus records lifecycle changes and analysis progress.
func (r *LectureRepository) UpdateStatus(ctx context.Context, id string, status models.LectureStatus, progress int, errorMessage string) error {
	progress = max(0, min(100, progress))
	query := r.db.rebind(`UPDATE lectures SET status = ?, progress = ?, error_message = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.conn.ExecContext(ctx, query, string(status), progress, errorMessage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update lecture status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update lecture status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("lecture %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *LectureRepository) DeleteLecture(ctx context.Context, id string) error {
	res, err := r.db.conn.ExecContext(ctx, r.db.rebind(`DELETE FROM lectures WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete lecture: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("lecture %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLecture(row rowScanner) (*models.Lecture, error) {
	var (
		lecture models.Lecture
		status  string
	)
	err := row.Scan(
		&lecture.ID,
		&lecture.Title,
		&lecture.Subject,
		&lecture.Filename,
		&lecture.ContentType,
		&lecture.Size,
		&status,
		&lecture.Progress,
		&lecture.ErrorMessage,
		&lecture.UploadTime,
		&lecture.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	lecture.Status = models.LectureStatus(status)
	return &lecture, nil
}
