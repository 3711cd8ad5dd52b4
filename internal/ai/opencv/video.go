package opencv

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"github.com/kdimtricp/lecturepulse/internal/ai"
)

// VideoOpener opens video files with OpenCV's FFmpeg backend.
type VideoOpener struct{}

func (VideoOpener) Open(path string) (ai.FrameSource, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("failed to open video %s", path)
	}
	return &VideoSource{capture: capture}, nil
}

// VideoSource decodes frames sequentially.
type VideoSource struct {
	capture *gocv.VideoCapture
	next    int
}

func (v *VideoSource) FPS() float64 {
	fps := v.capture.Get(gocv.VideoCaptureFPS)
	if math.IsNaN(fps) || fps < 0 {
		return 0
	}
	return fps
}

func (v *VideoSource) FrameCount() int {
	n := v.capture.Get(gocv.VideoCaptureFrameCount)
	if math.IsNaN(n) || n < 0 {
		return 0
	}
	return int(n)
}

func (v *VideoSource) Next() (ai.Frame, bool, error) {
	mat := gocv.NewMat()
	if ok := v.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return ai.Frame{}, false, ai.CheckStreamEnd(v.next, v.FrameCount())
	}
	frame := ai.Frame{Index: v.next, Image: NewMat(mat)}
	v.next++
	return frame, true, nil
}

func (v *VideoSource) Close() error {
	return v.capture.Close()
}
