package analysis

// Progress is emitted after every analyzed frame and once per later stage.
type Progress struct {
	Percent         int   `json:"percent"`
	Stage           Stage `json:"stage"`
	FramesProcessed int   `json:"frames_processed"`
}

type ProgressFunc func(Progress)

// progressTracker guarantees that reported percentages never decrease.
type progressTracker struct {
	emit     ProgressFunc
	expected int
	last     int
}

func newProgressTracker(emit ProgressFunc) *progressTracker {
	if emit == nil {
		emit = func(Progress) {}
	}
	return &progressTracker{emit: emit}
}

// frame reports a processed frame. Percent stays below 100 until the run is done.
func (p *progressTracker) frame(processed int) {
	percent := p.last
	if p.expected > 0 {
		percent = min(99, processed*100/p.expected)
	}
	p.report(percent, StagePerFrameAnalysis, processed)
}

func (p *progressTracker) stage(stage Stage, processed int) {
	percent := p.last
	if stage == StageDone {
		percent = 100
	}
	p.report(percent, stage, processed)
}

func (p *progressTracker) report(percent int, stage Stage, processed int) {
	p.last = max(p.last, percent)
	p.emit(Progress{Percent: p.last, Stage: stage, FramesProcessed: processed})
}
