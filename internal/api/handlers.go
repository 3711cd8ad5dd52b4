package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/kdimtricp/lecturepulse/internal/ai"
	"github.com/kdimtricp/lecturepulse/internal/analysis"
	"github.com/kdimtricp/lecturepulse/internal/database"
	"github.com/kdimtricp/lecturepulse/internal/engagement"
	"github.com/kdimtricp/lecturepulse/internal/models"
	"github.com/kdimtricp/lecturepulse/internal/storage"
)

type LectureRepository interface {
	InsertLecture(ctx context.Context, lecture *models.Lecture) error
	GetLectureByID(ctx context.Context, id string) (*models.Lecture, error)
	ListLectures(ctx context.Context) ([]models.Lecture, error)
	DeleteLecture(ctx context.Context, id string) error
}

type ResultRepository interface {
	GetByLectureID(ctx context.Context, lectureID string) (*models.AnalysisResult, error)
}

type ArtifactStore interface {
	ReadJSON(path string, v any) error
	Remove(path string) error
}

// ImageAnalyzer scores the faces of one still image.
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, img ai.Image) (engagement.FrameObservation, error)
}

type ImageDecoder func(data []byte) (ai.Image, error)

type App struct {
	Storage       storage.Storage
	Lectures      LectureRepository
	Results       ResultRepository
	Artifacts     ArtifactStore
	Analysis      *analysis.Service
	Images        ImageAnalyzer
	DecodeImage   ImageDecoder
	MaxUploadSize int64
	Logger        zerolog.Logger
}

var videoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (app *App) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequest(w, "File too large or malformed form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	sampleSec, err := parseSampleSec(r)
	if err == nil {
		err = app.Analysis.ValidateSampleSec(sampleSec)
	}
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		badRequest(w, "Failed to get file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		known, ok := videoExtensions[ext]
		if !ok {
			badRequest(w, "Only video files are allowed")
			return
		}
		contentType = known
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	filename, err := app.Storage.SaveFile(file, storage.FileInfo{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	})
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	lecture := models.NewLecture(title, strings.TrimSpace(r.FormValue("subject")), filename, contentType, header.Size)
	if err := app.Lectures.InsertLecture(r.Context(), lecture); err != nil {
		app.Storage.DeleteFile(filename)
		app.writeError(w, r, err)
		return
	}

	if _, err := app.Analysis.StartAnalysis(r.Context(), lecture.ID, sampleSec); err != nil {
		app.Logger.Error().Err(err).Str("lecture_id", lecture.ID).Msg("failed to start analysis after upload")
	} else {
		lecture.Status = models.LectureStatusProcessing
	}

	w.Header().Set("Location", "/lectures/"+lecture.ID)
	writeJSON(w, http.StatusCreated, lecture)
}

func (app *App) ListLecturesHandler(w http.ResponseWriter, r *http.Request) {
	lectures, err := app.Lectures.ListLectures(r.Context())
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lectures)
}

// lectureDetail is a lecture with its stored analysis, when there is one.
type lectureDetail struct {
	*models.Lecture
	Analysis *models.AnalysisResult `json:"analysis"`
}

func (app *App) GetLectureHandler(w http.ResponseWriter, r *http.Request) {
	lecture, err := app.Lectures.GetLectureByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	detail := lectureDetail{Lecture: lecture}
	result, err := app.Results.GetByLectureID(r.Context(), lecture.ID)
	switch {
	case err == nil:
		detail.Analysis = result
	case !errors.Is(err, database.ErrNotFound):
		app.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// DeleteLectureHandler removes the lecture row, its analysis result, the
// metrics artifact and the uploaded video. Lectures with a run in flight are
// refused.
func (app *App) DeleteLectureHandler(w http.ResponseWriter, r *http.Request) {
	lecture, err := app.Lectures.GetLectureByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	err = app.Analysis.Remove(r.Context(), lecture.ID, func(ctx context.Context) error {
		var metricsPath string
		result, err := app.Results.GetByLectureID(ctx, lecture.ID)
		switch {
		case err == nil:
			metricsPath = result.MetricsPath
		case !errors.Is(err, database.ErrNotFound):
			return err
		}

		if err := app.Lectures.DeleteLecture(ctx, lecture.ID); err != nil {
			return err
		}
		logger := app.Logger.With().Str("lecture_id", lecture.ID).Logger()
		if err := app.Storage.DeleteFile(lecture.Filename); err != nil {
			logger.Warn().Err(err).Msg("failed to delete video file")
		}
		if metricsPath != "" {
			if err := app.Artifacts.Remove(metricsPath); err != nil {
				logger.Warn().Err(err).Msg("failed to delete metrics artifact")
			}
		}
		return nil
	})
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *App) StreamVideoHandler(w http.ResponseWriter, r *http.Request) {
	lecture, err := app.Lectures.GetLectureByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	file, err := app.Storage.OpenFile(lecture.Filename)
	if err != nil {
		http.Error(w, "Video file not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	modTime := lecture.UploadTime
	if stater, ok := file.(interface{ Stat() (os.FileInfo, error) }); ok {
		if stat, err := stater.Stat(); err == nil {
			modTime = stat.ModTime()
		}
	}

	w.Header().Set("Content-Type", lecture.ContentType)

	// ServeContent answers Range requests with 206 Partial Content.
	http.ServeContent(w, r, lecture.Filename, modTime, file)
}

func parseSampleSec(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("sample_sec")
	if raw == "" && r.MultipartForm != nil {
		raw = r.FormValue("sample_sec")
	}
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: sample_sec %q is not a number", engagement.ErrInvalidConfiguration, raw)
	}
	if v == 0 {
		return 0, fmt.Errorf("%w: sample_sec must be positive", engagement.ErrInvalidConfiguration)
	}
	return v, nil
}
