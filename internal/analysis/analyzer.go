package analysis

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kdimtricp/lecturepulse/internal/ai"
	"github.com/kdimtricp/lecturepulse/internal/engagement"
	"github.com/kdimtricp/lecturepulse/internal/models"
)

// EmotionOutcome is the classifier result for one face. A degraded outcome
// carries the neutral fallback and the error that caused it.
type EmotionOutcome struct {
	Emotions models.Distribution
	Top      engagement.TopEmotion
	Affect   float64
	Degraded bool
	Err      error
}

const degradedAffect = 0.5

func classified(p ai.Prediction) EmotionOutcome {
	return EmotionOutcome{
		Emotions: p.Emotions,
		Top:      engagement.TopEmotion{Label: p.Top, Prob: p.TopProb},
		Affect:   engagement.Affect(p.Emotions),
	}
}

func degraded(err error) EmotionOutcome {
	return EmotionOutcome{
		Emotions: models.NeutralDistribution(),
		Top:      engagement.TopEmotion{Label: models.EmotionNeutral, Prob: 0},
		Affect:   degradedAffect,
		Degraded: true,
		Err:      err,
	}
}

// frameAnalyzer turns one decoded frame into a FrameObservation.
type frameAnalyzer struct {
	detector   ai.FaceDetector
	classifier ai.EmotionClassifier
	engine     *engagement.Engine
	logger     zerolog.Logger
}

// analyze returns the frame observation and the number of degraded faces.
// Only detector failures are returned as errors.
func (a *frameAnalyzer) analyze(ctx context.Context, frame ai.Frame, ts float64) (engagement.FrameObservation, int, error) {
	detections, err := a.detector.Detect(ctx, frame.Image)
	if err != nil {
		return engagement.FrameObservation{}, 0, fmt.Errorf("face detection on frame %d: %w", frame.Index, err)
	}

	faces := make([]engagement.FaceObservation, 0, len(detections))
	degradedFaces := 0
	for _, det := range detections {
		outcome := a.classify(ctx, frame.Image, det)
		if outcome.Degraded {
			degradedFaces++
			a.logger.Warn().
				Err(outcome.Err).
				Int("frame", frame.Index).
				Msg("emotion classification degraded to neutral")
		}
		faces = append(faces, a.face(det, outcome))
	}
	return a.engine.Composer().Frame(frame.Index, ts, faces), degradedFaces, nil
}

func (a *frameAnalyzer) classify(ctx context.Context, img ai.Image, det ai.Detection) EmotionOutcome {
	if det.BBox == nil || det.BBox.Empty() {
		return degraded(fmt.Errorf("detection has no bounding box"))
	}
	crop, err := img.Crop(*det.BBox)
	if err != nil {
		return degraded(fmt.Errorf("crop face: %w", err))
	}
	defer crop.Close()

	pred, err := a.classifier.Classify(ctx, crop)
	if err != nil {
		return degraded(err)
	}
	if len(pred.Emotions) == 0 {
		return degraded(fmt.Errorf("classifier returned an empty distribution"))
	}
	return classified(pred)
}

func (a *frameAnalyzer) face(det ai.Detection, outcome EmotionOutcome) engagement.FaceObservation {
	attention, gaze := a.engine.Pose().Score(det.Pose, det.Confidence)
	face := engagement.FaceObservation{
		BBox:       det.BBox,
		Attention:  attention,
		Affect:     outcome.Affect,
		Engagement: a.engine.Composer().Engagement(attention, outcome.Affect),
		TopEmotion: outcome.Top,
		Emotions:   outcome.Emotions,
		GazeTarget: gaze,
		Degraded:   outcome.Degraded,
	}
	if det.Pose != nil {
		yaw, pitch, roll := det.Pose.Yaw, det.Pose.Pitch, det.Pose.Roll
		face.Yaw, face.Pitch, face.Roll = &yaw, &pitch, &roll
	}
	return face
}
