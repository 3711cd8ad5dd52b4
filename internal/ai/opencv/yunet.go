package opencv

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/kdimtricp/lecturepulse/internal/ai"
	"github.com/kdimtricp/lecturepulse/internal/models"
)

type YuNetConfig struct {
	ModelPath        string
	ConfidenceThresh float64
	NMSThresh        float64
	TopK             int
	// Padding grows every box by this share of its larger side.
	Padding float64
}

func DefaultYuNetConfig() YuNetConfig {
	return YuNetConfig{
		ModelPath:        "models/face_detection_yunet_2023mar.onnx",
		ConfidenceThresh: 0.6,
		NMSThresh:        0.3,
		TopK:             5000,
		Padding:          ai.DefaultBoxPadding,
	}
}

// YuNetDetector uses OpenCV's FaceDetectorYN and estimates head pose from its
// five landmarks.
type YuNetDetector struct {
	detector gocv.FaceDetectorYN
	config   YuNetConfig
	mu       sync.Mutex
}

func NewYuNet(cfg YuNetConfig) (*YuNetDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}
	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"",
		image.Pt(320, 320),
		float32(cfg.ConfidenceThresh),
		float32(cfg.NMSThresh),
		cfg.TopK,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)
	return &YuNetDetector{detector: detector, config: cfg}, nil
}

func (d *YuNetDetector) Detect(ctx context.Context, img ai.Image) ([]ai.Detection, error) {
	mat, owned, err := asMat(img)
	if err != nil {
		return nil, err
	}
	if owned {
		defer mat.Close()
	}
	if mat.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	width, height := mat.Cols(), mat.Rows()
	d.detector.SetInputSize(image.Pt(width, height))

	faces := gocv.NewMat()
	defer faces.Close()
	d.detector.Detect(mat, &faces)

	// Each row: x, y, w, h, five landmark pairs, score.
	detections := make([]ai.Detection, 0, faces.Rows())
	for r := 0; r < faces.Rows(); r++ {
		at := func(c int) float64 { return float64(faces.GetFloatAt(r, c)) }
		raw := models.BoundingBox{X: int(at(0)), Y: int(at(1)), Width: int(at(2)), Height: int(at(3))}
		box := raw.Expand(d.config.Padding, width, height)
		if box.Empty() {
			continue
		}
		lm := ai.Landmarks{
			RightEye:   ai.Point{X: at(4), Y: at(5)},
			LeftEye:    ai.Point{X: at(6), Y: at(7)},
			Nose:       ai.Point{X: at(8), Y: at(9)},
			RightMouth: ai.Point{X: at(10), Y: at(11)},
			LeftMouth:  ai.Point{X: at(12), Y: at(13)},
		}
		detections = append(detections, ai.Detection{
			BBox:       &box,
			Pose:       ai.EstimateHeadPose(lm),
			Confidence: at(14),
		})
	}
	return detections, nil
}

func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}
