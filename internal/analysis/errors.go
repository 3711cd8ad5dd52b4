package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrVideoUnreadable means the source could not be opened or decoded.
	ErrVideoUnreadable = errors.New("video unreadable")
	// ErrNoAnalyzableFrames means sampling selected no frames or no frame
	// contained a face.
	ErrNoAnalyzableFrames = errors.New("no analyzable frames")
)

// Stage is a step of an analysis run. Runs only move forward.
type Stage int

const (
	StageSampling Stage = iota
	StagePerFrameAnalysis
	StageAggregating
	StageHighlightExtraction
	StageSuggestionSynthesis
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageSampling:
		return "sampling"
	case StagePerFrameAnalysis:
		return "per_frame_analysis"
	case StageAggregating:
		return "aggregating"
	case StageHighlightExtraction:
		return "highlight_extraction"
	case StageSuggestionSynthesis:
		return "suggestion_synthesis"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// RunError is a fatal failure of one run.
type RunError struct {
	VideoID string
	Stage   Stage
	Err     error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("analysis of %s failed during %s: %v", e.VideoID, e.Stage, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
