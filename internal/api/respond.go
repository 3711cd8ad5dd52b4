package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kdimtricp/lecturepulse/internal/analysis"
	"github.com/kdimtricp/lecturepulse/internal/database"
	"github.com/kdimtricp/lecturepulse/internal/engagement"
	"github.com/kdimtricp/lecturepulse/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engagement.ErrInvalidConfiguration), errors.Is(err, storage.ErrIncompleteUpload):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrAnalysisInProgress), errors.Is(err, analysis.ErrLectureRemoving):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (app *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		app.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}
