package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kdimtricp/lecturepulse/internal/analysis"
	"github.com/kdimtricp/lecturepulse/internal/charts"
	"github.com/kdimtricp/lecturepulse/internal/engagement"
	"github.com/kdimtricp/lecturepulse/internal/models"
)

const maxImageSize = 10 << 20

var sseKeepAlive = 15 * time.Second

type analysisStarted struct {
	LectureID string               `json:"lecture_id"`
	SampleSec float64              `json:"sample_sec"`
	Status    models.LectureStatus `json:"status"`
}

type statusEvent struct {
	Status       models.LectureStatus `json:"status"`
	Progress     int                  `json:"progress"`
	ErrorMessage string               `json:"error_message,omitempty"`
}

type detectImageResponse struct {
	FaceCount int                          `json:"face_count"`
	Faces     []engagement.FaceObservation `json:"faces"`
}

func (app *App) StartAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	sampleSec, err := parseSampleSec(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	run, err := app.Analysis.StartAnalysis(r.Context(), chi.URLParam(r, "id"), sampleSec)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/lectures/%s/progress", run.LectureID))
	writeJSON(w, http.StatusAccepted, analysisStarted{
		LectureID: run.LectureID,
		SampleSec: run.SampleSec,
		Status:    models.LectureStatusProcessing,
	})
}

func (app *App) GetAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	result, err := app.Results.GetByLectureID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ProgressStreamHandler streams run updates as server-sent events. Without a
// run in this process it reports the stored status once.
func (app *App) ProgressStreamHandler(w http.ResponseWriter, r *http.Request) {
	lectureID := chi.URLParam(r, "id")

	lecture, err := app.Lectures.GetLectureByID(r.Context(), lectureID)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	run, ok := app.Analysis.GetRun(lectureID)
	if !ok {
		app.writeEvent(w, "status", statusEvent{
			Status:       lecture.Status,
			Progress:     lecture.Progress,
			ErrorMessage: lecture.ErrorMessage,
		})
		flusher.Flush()
		return
	}

	updates, stop := run.Subscribe()
	defer stop()

	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()

	clientGone := r.Context().Done()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			app.writeEvent(w, update.Type, update.Data)
			flusher.Flush()

		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()

		case <-clientGone:
			return
		}
	}
}

func (app *App) writeEvent(w io.Writer, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		app.Logger.Error().Err(err).Str("event", event).Msg("failed to marshal event")
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

func (app *App) TimelineHandler(w http.ResponseWriter, r *http.Request) {
	lectureID := chi.URLParam(r, "id")

	lecture, err := app.Lectures.GetLectureByID(r.Context(), lectureID)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	result, err := app.Results.GetByLectureID(r.Context(), lectureID)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	var artifact analysis.Artifact
	if err := app.Artifacts.ReadJSON(result.MetricsPath, &artifact); err != nil {
		app.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := charts.RenderTimeline(&buf, lecture.Title, artifact); err != nil {
		app.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// DetectImageHandler runs face detection and emotion classification on one
// uploaded image.
func (app *App) DetectImageHandler(w http.ResponseWriter, r *http.Request) {
	if app.Images == nil || app.DecodeImage == nil {
		http.Error(w, "Image analysis is not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		badRequest(w, "Image too large or malformed form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("image")
	if err != nil {
		badRequest(w, "Failed to get image")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "Failed to read image")
		return
	}

	img, err := app.DecodeImage(data)
	if err != nil {
		badRequest(w, "Unsupported image")
		return
	}
	defer img.Close()

	obs, err := app.Images.AnalyzeImage(r.Context(), img)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, detectImageResponse{FaceCount: obs.FaceCount, Faces: obs.Faces})
}
