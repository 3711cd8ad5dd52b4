package opencv

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/kdimtricp/lecturepulse/internal/ai"
)

const emotionInputSize = 96

// EmotionNet runs a seven-class expression model exported to ONNX. Input is a
// 96x96 CLAHE-equalized grayscale crop scaled to [-1, 1].
type EmotionNet struct {
	net   gocv.Net
	clahe gocv.CLAHE
	mu    sync.Mutex
}

func NewEmotionNet(modelPath string) (*EmotionNet, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("emotion model not found: %s", modelPath)
	}
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load emotion model %s", modelPath)
	}
	return &EmotionNet{
		net:   net,
		clahe: gocv.NewCLAHEWithParams(2.0, image.Pt(8, 8)),
	}, nil
}

func (e *EmotionNet) Classify(ctx context.Context, face ai.Image) (ai.Prediction, error) {
	mat, owned, err := asMat(face)
	if err != nil {
		return ai.Prediction{}, err
	}
	if owned {
		defer mat.Close()
	}
	if mat.Empty() {
		return ai.Prediction{}, fmt.Errorf("empty face crop")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if mat.Channels() == 1 {
		mat.CopyTo(&gray)
	} else {
		gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(gray, &resized, image.Pt(emotionInputSize, emotionInputSize), 0, 0, gocv.InterpolationArea)

	e.mu.Lock()
	defer e.mu.Unlock()

	equalized := gocv.NewMat()
	defer equalized.Close()
	e.clahe.Apply(resized, &equalized)

	blob := gocv.BlobFromImage(equalized, 1.0/127.5, image.Pt(emotionInputSize, emotionInputSize),
		gocv.NewScalar(127.5, 0, 0, 0), false, false)
	defer blob.Close()

	e.net.SetInput(blob, "")
	out := e.net.Forward("")
	defer out.Close()

	logits, err := out.DataPtrFloat32()
	if err != nil {
		return ai.Prediction{}, fmt.Errorf("failed to read model output: %w", err)
	}
	return ai.PredictionFromLogits(append([]float32(nil), logits...))
}

func (e *EmotionNet) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.clahe.Close(); err != nil {
		return err
	}
	return e.net.Close()
}
