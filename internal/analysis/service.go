package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kdimtricp/lecturepulse/internal/engagement"
	"github.com/kdimtricp/lecturepulse/internal/models"
)

var (
	// ErrAnalysisInProgress is returned when a lecture already has a running analysis.
	ErrAnalysisInProgress = errors.New("analysis already in progress")
	// ErrLectureRemoving is returned when a lecture is being deleted.
	ErrLectureRemoving = errors.New("lecture is being deleted")
)

type LectureStore interface {
	GetLectureByID(ctx context.Context, id string) (*models.Lecture, error)
	UpdateStatus(ctx context.Context, id string, status models.LectureStatus, progress int, errorMessage string) error
}

type ResultStore interface {
	SaveResult(ctx context.Context, result *models.AnalysisResult) error
}

// ArtifactWriter persists the metrics artifact and returns where it was written.
type ArtifactWriter interface {
	WriteJSON(name string, v any) (string, error)
}

// VideoLocator resolves a stored upload to a path the frame source can open.
type VideoLocator interface {
	FilePath(name string) (string, error)
}

type Runner interface {
	Run(ctx context.Context, req Request, progress ProgressFunc) (*Report, error)
}

type Scheduler interface {
	Go(ctx context.Context, name string, process func() error)
}

type Config struct {
	Engagement engagement.Config
}

// Service runs analyses in the background, keeps lecture status in sync and
// persists results.
type Service struct {
	runner   Runner
	lectures LectureStore
	results  ResultStore
	metrics  ArtifactWriter
	videos   VideoLocator
	pool     Scheduler
	config   Config
	logger   zerolog.Logger
	now      func() time.Time

	runs     map[string]*Run
	removing map[string]struct{}
	runsMu   sync.Mutex
}

func NewService(
	runner Runner,
	lectures LectureStore,
	results ResultStore,
	metrics ArtifactWriter,
	videos VideoLocator,
	pool Scheduler,
	config Config,
	logger zerolog.Logger,
) *Service {
	return &Service{
		runner:   runner,
		lectures: lectures,
		results:  results,
		metrics:  metrics,
		videos:   videos,
		pool:     pool,
		config:   config,
		logger:   logger.With().Str("component", "analysis").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
		runs:     make(map[string]*Run),
		removing: make(map[string]struct{}),
	}
}

// ValidateSampleSec checks a requested sampling period. Zero selects the
// configured default.
func (s *Service) ValidateSampleSec(sampleSec float64) error {
	if sampleSec == 0 {
		return nil
	}
	return s.config.Engagement.ValidateSampleSec(sampleSec)
}

// StartAnalysis schedules an analysis of the lecture. A zero sampleSec uses
// the configured default.
func (s *Service) StartAnalysis(ctx context.Context, lectureID string, sampleSec float64) (*Run, error) {
	if sampleSec == 0 {
		sampleSec = s.config.Engagement.SampleSec
	}
	if err := s.config.Engagement.ValidateSampleSec(sampleSec); err != nil {
		return nil, err
	}

	// The run slot is reserved before the lecture is read so that Remove
	// cannot delete the row in between.
	s.runsMu.Lock()
	if _, ok := s.removing[lectureID]; ok {
		s.runsMu.Unlock()
		return nil, ErrLectureRemoving
	}
	previous, ok := s.runs[lectureID]
	if ok && !previous.Finished() {
		s.runsMu.Unlock()
		return nil, ErrAnalysisInProgress
	}
	run := newRun(lectureID, sampleSec, s.now())
	s.runs[lectureID] = run
	s.runsMu.Unlock()

	lecture, err := s.lectures.GetLectureByID(ctx, lectureID)
	if err != nil {
		err = fmt.Errorf("getting lecture: %w", err)
		run.finish(Update{Type: UpdateError, Data: ErrorEvent{Message: err.Error()}}, nil, err)
		s.runsMu.Lock()
		if previous != nil {
			s.runs[lectureID] = previous
		} else {
			delete(s.runs, lectureID)
		}
		s.runsMu.Unlock()
		return nil, err
	}

	runCtx := context.WithoutCancel(ctx)
	if err := s.lectures.UpdateStatus(runCtx, lectureID, models.LectureStatusProcessing, 0, ""); err != nil {
		s.finish(runCtx, run, 0, fmt.Errorf("marking lecture processing: %w", err))
		return nil, err
	}

	s.pool.Go(runCtx, "analysis:"+lectureID, func() error {
		return s.execute(runCtx, run, lecture)
	})
	return run, nil
}

// AnalyzeNow starts an analysis and waits for it to finish.
func (s *Service) AnalyzeNow(ctx context.Context, lectureID string, sampleSec float64) (*models.AnalysisResult, error) {
	run, err := s.StartAnalysis(ctx, lectureID, sampleSec)
	if err != nil {
		return nil, err
	}
	return run.Wait(ctx)
}

// Remove calls remove to delete a lecture and its data while no analysis of
// it can start or run. Lectures with a run in flight are refused.
func (s *Service) Remove(ctx context.Context, lectureID string, remove func(ctx context.Context) error) error {
	s.runsMu.Lock()
	if _, ok := s.removing[lectureID]; ok {
		s.runsMu.Unlock()
		return ErrLectureRemoving
	}
	if run, ok := s.runs[lectureID]; ok && !run.Finished() {
		s.runsMu.Unlock()
		return ErrAnalysisInProgress
	}
	s.removing[lectureID] = struct{}{}
	s.runsMu.Unlock()

	err := remove(ctx)

	s.runsMu.Lock()
	delete(s.removing, lectureID)
	if err == nil {
		delete(s.runs, lectureID)
	}
	s.runsMu.Unlock()
	if err != nil {
		return err
	}
	s.logger.Info().Str("lecture_id", lectureID).Msg("lecture removed")
	return nil
}

// GetRun returns the latest run for a lecture started by this process.
func (s *Service) GetRun(lectureID string) (*Run, bool) {
	s.runsMu.Lock()
	defer s.runsMu.Unlock()
	run, ok := s.runs[lectureID]
	return run, ok
}

func (s *Service) execute(ctx context.Context, run *Run, lecture *models.Lecture) (err error) {
	logger := s.logger.With().Str("lecture_id", lecture.ID).Logger()
	percent := 0

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panicked: %v", r)
			s.finish(ctx, run, percent, err)
		}
	}()

	path, err := s.videos.FilePath(lecture.Filename)
	if err != nil {
		err = &RunError{VideoID: lecture.ID, Stage: StageSampling, Err: fmt.Errorf("%w: %v", ErrVideoUnreadable, err)}
		s.finish(ctx, run, percent, err)
		return err
	}

	report, err := s.runner.Run(ctx, Request{VideoID: lecture.ID, Path: path, SampleSec: run.SampleSec}, func(p Progress) {
		run.publish(Update{Type: UpdateProgress, Data: p})
		if p.Percent == percent || p.Percent >= 100 {
			return
		}
		percent = p.Percent
		if err := s.lectures.UpdateStatus(ctx, lecture.ID, models.LectureStatusProcessing, percent, ""); err != nil {
			logger.Warn().Err(err).Int("percent", percent).Msg("failed to persist progress")
		}
	})
	if err != nil {
		s.finish(ctx, run, percent, err)
		return err
	}

	result, err := s.persist(ctx, report)
	if err != nil {
		s.finish(ctx, run, percent, err)
		return err
	}

	if err := s.lectures.UpdateStatus(ctx, lecture.ID, models.LectureStatusDone, 100, ""); err != nil {
		s.finish(ctx, run, percent, fmt.Errorf("marking lecture done: %w", err))
		return err
	}
	run.finish(Update{Type: UpdateDone, Data: result}, result, nil)

	logger.Info().
		Float64("score", result.Score).
		Str("metrics_path", result.MetricsPath).
		Dur("elapsed", s.now().Sub(run.StartedAt)).
		Msg("lecture analyzed")
	return nil
}

func (s *Service) persist(ctx context.Context, report *Report) (*models.AnalysisResult, error) {
	path, err := s.metrics.WriteJSON(ArtifactName(report.VideoID, s.now()), report.Artifact())
	if err != nil {
		return nil, fmt.Errorf("writing metrics artifact: %w", err)
	}

	summary, err := report.SummaryJSON()
	if err != nil {
		return nil, err
	}

	result := &models.AnalysisResult{
		LectureID:     report.VideoID,
		AvgEngagement: report.Summary.AvgEngagement,
		AvgAttention:  report.Summary.AvgAttention,
		Score:         report.Summary.Score,
		MetricsPath:   path,
		SummaryJSON:   summary,
	}
	if err := s.results.SaveResult(ctx, result); err != nil {
		return nil, fmt.Errorf("saving analysis result: %w", err)
	}
	return result, nil
}

// finish records a failed run. The lecture never stays in processing.
func (s *Service) finish(ctx context.Context, run *Run, percent int, cause error) {
	event := ErrorEvent{Message: cause.Error()}
	var runErr *RunError
	if errors.As(cause, &runErr) {
		event.Stage = runErr.Stage.String()
	}

	if err := s.lectures.UpdateStatus(ctx, run.LectureID, models.LectureStatusError, percent, cause.Error()); err != nil {
		s.logger.Error().Err(err).Str("lecture_id", run.LectureID).Msg("failed to mark lecture as failed")
	}
	s.logger.Error().Err(cause).Str("lecture_id", run.LectureID).Msg("analysis failed")

	run.finish(Update{Type: UpdateError, Data: event}, nil, cause)
}
