package analysis

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kdimtricp/lecturepulse/internal/ai"
	"github.com/kdimtricp/lecturepulse/internal/engagement"
)

// Request identifies one video to analyze.
type Request struct {
	VideoID   string
	Path      string
	SampleSec float64
}

// Report is the result of a successful run.
type Report struct {
	VideoID       string                        `json:"lecture_id"`
	SampleSec     float64                       `json:"sample_sec"`
	FPS           float64                       `json:"fps"`
	FrameStep     int                           `json:"frame_step"`
	Summary       engagement.AnalysisSummary    `json:"summary"`
	Frames        []engagement.FrameObservation `json:"frames"`
	DegradedFaces int                           `json:"degraded_faces"`
}

// Orchestrator drives a single synchronous pass over a video. It is the only
// component that calls the detector and classifier and it owns the frame
// source for the duration of a run.
//
// The context is handed to collaborators only; a run is never interrupted
// between frames.
type Orchestrator struct {
	opener   ai.VideoOpener
	analyzer *frameAnalyzer
	engine   *engagement.Engine
	logger   zerolog.Logger
}

func NewOrchestrator(opener ai.VideoOpener, detector ai.FaceDetector, classifier ai.EmotionClassifier, engine *engagement.Engine, logger zerolog.Logger) *Orchestrator {
	logger = logger.With().Str("component", "orchestrator").Logger()
	return &Orchestrator{
		opener: opener,
		analyzer: &frameAnalyzer{
			detector:   detector,
			classifier: classifier,
			engine:     engine,
			logger:     logger,
		},
		engine: engine,
		logger: logger,
	}
}

func (o *Orchestrator) Run(ctx context.Context, req Request, progress ProgressFunc) (*Report, error) {
	logger := o.logger.With().Str("lecture_id", req.VideoID).Logger()
	fail := func(stage Stage, err error) (*Report, error) {
		logger.Error().Err(err).Stringer("stage", stage).Msg("analysis failed")
		return nil, &RunError{VideoID: req.VideoID, Stage: stage, Err: err}
	}

	if err := o.engine.Config().ValidateSampleSec(req.SampleSec); err != nil {
		return fail(StageSampling, err)
	}

	src, err := o.opener.Open(req.Path)
	if err != nil {
		return fail(StageSampling, fmt.Errorf("%w: %v", ErrVideoUnreadable, err))
	}
	defer src.Close()

	sampler := o.engine.Sampler(src.FPS(), req.SampleSec)
	tracker := newProgressTracker(progress)
	tracker.expected = sampler.Expected(src.FrameCount())
	tracker.stage(StageSampling, 0)
	logger.Info().
		Float64("fps", sampler.FPS()).
		Int("frame_step", sampler.Step()).
		Int("expected_frames", tracker.expected).
		Msg("analysis started")

	var (
		frames        []engagement.FrameObservation
		degradedFaces int
		decoded       int
	)
	unreadable := func(err error) (*Report, error) {
		stage := StagePerFrameAnalysis
		if decoded == 0 {
			stage = StageSampling
		}
		return fail(stage, fmt.Errorf("%w: after %d decoded frames: %w", ErrVideoUnreadable, decoded, err))
	}
	for {
		frame, ok, err := src.Next()
		if err != nil {
			return unreadable(err)
		}
		if !ok {
			if err := ai.CheckStreamEnd(decoded, src.FrameCount()); err != nil {
				return unreadable(err)
			}
			break
		}
		decoded++
		if !sampler.Selects(frame.Index) {
			frame.Image.Close()
			continue
		}

		obs, degradedCount, err := o.analyzer.analyze(ctx, frame, sampler.Timestamp(frame.Index))
		frame.Image.Close()
		if err != nil {
			return fail(StagePerFrameAnalysis, err)
		}
		frames = append(frames, obs)
		degradedFaces += degradedCount
		tracker.frame(len(frames))
		logger.Debug().Int("frame", frame.Index).Int("faces", obs.FaceCount).Msg("frame analyzed")
	}
	if len(frames) == 0 {
		return fail(StageSampling, fmt.Errorf("%w: sampling selected no frames", ErrNoAnalyzableFrames))
	}

	tracker.stage(StageAggregating, len(frames))
	agg := o.engine.Composer().Summarize(frames)
	if agg.FacesTotal == 0 {
		return fail(StageAggregating, fmt.Errorf("%w: no faces in %d sampled frames", ErrNoAnalyzableFrames, len(frames)))
	}

	tracker.stage(StageHighlightExtraction, len(frames))
	highlights := o.engine.Highlights(req.SampleSec)
	peaks, dips := highlights.Peaks(frames), highlights.Dips(frames)

	tracker.stage(StageSuggestionSynthesis, len(frames))
	suggestions := o.engine.Suggestions().Generate(agg.AvgEngagement, agg.AvgAttention, peaks, dips)

	tracker.stage(StageDone, len(frames))
	logger.Info().
		Int("frames", agg.FramesAnalyzed).
		Int("faces", agg.FacesTotal).
		Int("degraded_faces", degradedFaces).
		Float64("score", agg.Score).
		Msg("analysis finished")

	return &Report{
		VideoID:   req.VideoID,
		SampleSec: req.SampleSec,
		FPS:       sampler.FPS(),
		FrameStep: sampler.Step(),
		Summary: engagement.AnalysisSummary{
			Aggregate:   agg,
			TopPeaks:    peaks,
			TopDips:     dips,
			Suggestions: suggestions,
		},
		Frames:        frames,
		DegradedFaces: degradedFaces,
	}, nil
}

// AnalyzeImage scores the faces of a single still image.
func (o *Orchestrator) AnalyzeImage(ctx context.Context, img ai.Image) (engagement.FrameObservation, error) {
	obs, degradedCount, err := o.analyzer.analyze(ctx, ai.Frame{Index: 0, Image: img}, 0)
	if err != nil {
		return engagement.FrameObservation{}, err
	}
	o.logger.Debug().Int("faces", obs.FaceCount).Int("degraded_faces", degradedCount).Msg("image analyzed")
	return obs, nil
}
