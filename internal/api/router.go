package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(app.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/ping", PingHandler)

	r.Route("/lectures", func(r chi.Router) {
		r.Post("/", app.UploadHandler)
		r.Get("/", app.ListLecturesHandler)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.GetLectureHandler)
			r.Delete("/", app.DeleteLectureHandler)
			r.Get("/video", app.StreamVideoHandler)
			r.Post("/analysis", app.StartAnalysisHandler)
			r.Get("/analysis", app.GetAnalysisHandler)
			r.Get("/progress", app.ProgressStreamHandler)
			r.Get("/timeline", app.TimelineHandler)
		})
	})

	r.Post("/emotion/detect-image", app.DetectImageHandler)

	return r
}
