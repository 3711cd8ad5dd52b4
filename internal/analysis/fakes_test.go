package analysis

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/kdimtricp/lecturepulse/internal/ai"
	"github.com/kdimtricp/lecturepulse/internal/models"
)

type fakeImage struct {
	mu     sync.Mutex
	closed bool
}

func (f *fakeImage) Size() image.Point { return image.Pt(640, 480) }

func (f *fakeImage) Crop(box models.BoundingBox) (ai.Image, error) {
	return &fakeImage{}, nil
}

func (f *fakeImage) EncodeJPEG() ([]byte, error) { return []byte{0xff, 0xd8}, nil }

func (f *fakeImage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeImage) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeSource struct {
	fps    float64
	count  int
	failAt int
	// truncated sources stop after decodable frames with ok=false and no
	// error, the way an OpenCV capture reports a failed read.
	truncated bool
	decodable int
	next      int
	closed    bool
	images    []*fakeImage
}

func (s *fakeSource) FPS() float64    { return s.fps }
func (s *fakeSource) FrameCount() int { return s.count }

func (s *fakeSource) Next() (ai.Frame, bool, error) {
	if s.failAt > 0 && s.next == s.failAt {
		return ai.Frame{}, false, errors.New("corrupt packet")
	}
	if s.next >= s.count || (s.truncated && s.next >= s.decodable) {
		return ai.Frame{}, false, nil
	}
	img := &fakeImage{}
	s.images = append(s.images, img)
	frame := ai.Frame{Index: s.next, Image: img}
	s.next++
	return frame, true, nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

type fakeOpener struct {
	source *fakeSource
	err    error
	paths  []string
}

func (o *fakeOpener) Open(path string) (ai.FrameSource, error) {
	o.paths = append(o.paths, path)
	if o.err != nil {
		return nil, o.err
	}
	return o.source, nil
}

type fakeDetector struct {
	detections []ai.Detection
	err        error
	calls      int
}

func (d *fakeDetector) Detect(ctx context.Context, img ai.Image) ([]ai.Detection, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.detections, nil
}

type fakeClassifier struct {
	prediction ai.Prediction
	err        error
}

func (c *fakeClassifier) Classify(ctx context.Context, face ai.Image) (ai.Prediction, error) {
	if c.err != nil {
		return ai.Prediction{}, c.err
	}
	return c.prediction, nil
}

func happyPrediction() ai.Prediction {
	pred, err := ai.NewPrediction(map[string]float64{models.EmotionHappy: 0.9, models.EmotionNeutral: 0.1})
	if err != nil {
		panic(err)
	}
	return pred
}

func frontalFace() ai.Detection {
	return ai.Detection{
		BBox:       &models.BoundingBox{X: 100, Y: 80, Width: 120, Height: 140},
		Pose:       &models.HeadPose{},
		Confidence: 0.95,
	}
}
