package ai

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

// ErrUndecodable is returned by a FrameSource whose stream stops decoding
// before the frame count its container reports.
var ErrUndecodable = errors.New("video stream is not decodable")

// Container frame counts are estimates; a stream may end this many frames
// short (or 5% of the count, whichever is larger) and still be complete.
const frameCountSlack = 10

// CheckStreamEnd decides whether a stream that stopped after decoded frames
// ended cleanly. An unknown count (zero) is always a clean end.
func CheckStreamEnd(decoded, reported int) error {
	if reported <= 0 {
		return nil
	}
	if decoded == 0 {
		return fmt.Errorf("%w: first of %d frames failed to decode", ErrUndecodable, reported)
	}
	slack := max(frameCountSlack, reported/20)
	if reported-decoded > slack {
		return fmt.Errorf("%w: decoding stopped at frame %d of %d", ErrUndecodable, decoded, reported)
	}
	return nil
}

// Image is a decoded frame or a crop of one. Callers must Close it.
type Image interface {
	Size() image.Point
	Crop(box models.BoundingBox) (Image, error)
	EncodeJPEG() ([]byte, error)
	Close() error
}

// Frame is one decoded frame with its 0-based position in the stream.
type Frame struct {
	Index int
	Image Image
}

// FrameSource is a lazy, finite, non-restartable frame sequence.
type FrameSource interface {
	FPS() float64
	FrameCount() int
	// Next returns the next frame; ok is false once the stream is exhausted.
	// A stream that stops decoding early reports an error wrapping
	// ErrUndecodable instead of a clean end.
	Next() (frame Frame, ok bool, err error)
	Close() error
}

type VideoOpener interface {
	Open(path string) (FrameSource, error)
}

// Detection is one face found by a FaceDetector. Pose is nil when it could
// not be solved.
type Detection struct {
	BBox       *models.BoundingBox
	Pose       *models.HeadPose
	Confidence float64
}

type FaceDetector interface {
	Detect(ctx context.Context, img Image) ([]Detection, error)
}

// Prediction is the output of an EmotionClassifier over EmotionLabels.
type Prediction struct {
	Emotions models.Distribution
	Top      string
	TopProb  float64
}

type EmotionClassifier interface {
	Classify(ctx context.Context, face Image) (Prediction, error)
}
