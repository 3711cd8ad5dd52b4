package models

import (
	"time"

	"github.com/google/uuid"
)

type LectureStatus string

const (
	LectureStatusPending    LectureStatus = "pending"
	LectureStatusProcessing LectureStatus = "processing"
	LectureStatusDone       LectureStatus = "done"
	LectureStatusError      LectureStatus = "error"
)

type Lecture struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Subject      string        `json:"subject,omitempty"`
	Filename     string        `json:"filename"`
	ContentType  string        `json:"content_type"`
	Size         int64         `json:"size"`
	Status       LectureStatus `json:"status"`
	Progress     int           `json:"progress"`
	ErrorMessage string        `json:"error_message,omitempty"`
	UploadTime   time.Time     `json:"upload_time"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Finished reports whether the lecture reached a terminal status.
func (l *Lecture) Finished() bool {
	return l.Status == LectureStatusDone || l.Status == LectureStatusError
}

func NewLecture(title, subject, filename, contentType string, size int64) *Lecture {
	now := time.Now().UTC()
	return &Lecture{
		ID:          uuid.New().String(),
		Title:       title,
		Subject:     subject,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		Status:      LectureStatusPending,
		UploadTime:  now,
		UpdatedAt:   now,
	}
}
