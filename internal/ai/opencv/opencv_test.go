package opencv

import (
	"context"
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

func solidMat(t *testing.T, w, h int) *Mat {
	t.Helper()
	m := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	gocv.Rectangle(&m, image.Rect(0, 0, w/2, h/2), color.RGBA{R: 255, A: 255}, -1)
	return NewMat(m)
}

func TestMatCropAndEncode(t *testing.T) {
	img := solidMat(t, 64, 48)
	defer img.Close()

	assert.Equal(t, image.Pt(64, 48), img.Size())

	crop, err := img.Crop(models.BoundingBox{X: 50, Y: 40, Width: 30, Height: 30})
	require.NoError(t, err)
	defer crop.Close()
	assert.Equal(t, image.Pt(14, 8), crop.Size())

	data, err := img.EncodeJPEG()
	require.NoError(t, err)
	assert.Greater(t, len(data), 2)
	assert.Equal(t, []byte{0xFF, 0xD8}, data[:2])
}

func TestDecodeImage(t *testing.T) {
	img := solidMat(t, 32, 24)
	defer img.Close()
	data, err := img.EncodeJPEG()
	require.NoError(t, err)

	decoded, err := DecodeImage(data)
	require.NoError(t, err)
	defer decoded.Close()
	assert.Equal(t, image.Pt(32, 24), decoded.Size())

	_, err = DecodeImage([]byte("not an image"))
	assert.Error(t, err)
}

func TestVideoOpenerMissingFile(t *testing.T) {
	_, err := VideoOpener{}.Open("does-not-exist.mp4")
	assert.Error(t, err)
}

func TestVideoSourceReadsWrittenFile(t *testing.T) {
	path := t.TempDir() + "/clip.avi"
	writer, err := gocv.VideoWriterFile(path, "MJPG", 10, 64, 48, true)
	if err != nil {
		t.Skipf("video writer unavailable: %v", err)
	}
	for i := 0; i < 12; i++ {
		frame := solidMat(t, 64, 48)
		require.NoError(t, writer.Write(frame.Mat()))
		frame.Close()
	}
	writer.Close()

	src, err := VideoOpener{}.Open(path)
	require.NoError(t, err)
	defer src.Close()

	assert.InDelta(t, 10, src.FPS(), 0.5)
	count := 0
	for {
		frame, ok, err := src.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		assert.Equal(t, count, frame.Index)
		frame.Image.Close()
		count++
	}
	assert.Equal(t, 12, count)
}

func TestYuNetDetector(t *testing.T) {
	cfg := DefaultYuNetConfig()
	if path := os.Getenv("LECTURE_YUNET_MODEL"); path != "" {
		cfg.ModelPath = path
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		t.Skipf("YuNet model not available at %s", cfg.ModelPath)
	}

	d, err := NewYuNet(cfg)
	require.NoError(t, err)
	defer d.Close()

	img := solidMat(t, 320, 240)
	defer img.Close()
	dets, err := d.Detect(context.Background(), img)
	require.NoError(t, err)
	assert.Empty(t, dets)
}

func TestEmotionNet(t *testing.T) {
	path := os.Getenv("LECTURE_EMOTION_MODEL")
	if path == "" {
		path = "models/emotion_minix.onnx"
	}
	if _, err := os.Stat(path); err != nil {
		t.Skipf("emotion model not available at %s", path)
	}

	net, err := NewEmotionNet(path)
	require.NoError(t, err)
	defer net.Close()

	img := solidMat(t, 80, 80)
	defer img.Close()
	pred, err := net.Classify(context.Background(), img)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, pred.Emotions.Sum(), 1e-6)
	assert.NotEmpty(t, pred.Top)
}

func TestNewYuNetMissingModel(t *testing.T) {
	cfg := DefaultYuNetConfig()
	cfg.ModelPath = "missing.onnx"
	_, err := NewYuNet(cfg)
	assert.Error(t, err)

	_, err = NewEmotionNet("missing.onnx")
	assert.Error(t, err)
}
