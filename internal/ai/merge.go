package ai

import (
	"context"
	"fmt"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

const (
	DefaultMergeIoU   = 0.3
	DefaultBoxPadding = 0.15
)

// MergedDetector runs a pose-capable detector and adds the faces that only a
// second, box-only detector found. Added faces are padded and carry no pose.
type MergedDetector struct {
	Primary   FaceDetector
	Secondary FaceDetector
	IoU       float64
	Padding   float64
}

func NewMergedDetector(primary, secondary FaceDetector) *MergedDetector {
	return &MergedDetector{
		Primary:   primary,
		Secondary: secondary,
		IoU:       DefaultMergeIoU,
		Padding:   DefaultBoxPadding,
	}
}

func (m *MergedDetector) Detect(ctx context.Context, img Image) ([]Detection, error) {
	primary, err := m.Primary.Detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("primary detector: %w", err)
	}
	if m.Secondary == nil {
		return primary, nil
	}
	secondary, err := m.Secondary.Detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("secondary detector: %w", err)
	}
	size := img.Size()
	return MergeDetections(primary, secondary, m.IoU, m.Padding, size.X, size.Y), nil
}

// MergeDetections appends every secondary detection that does not overlap a
// primary one by more than iou. Appended boxes are expanded by pad and lose
// their pose.
func MergeDetections(primary, secondary []Detection, iou, pad float64, width, height int) []Detection {
	out := append([]Detection(nil), primary...)
	for _, det := range secondary {
		if det.BBox == nil || overlapsAny(*det.BBox, primary, iou) {
			continue
		}
		box := det.BBox.Expand(pad, width, height)
		out = append(out, Detection{BBox: &box, Confidence: det.Confidence})
	}
	return out
}

func overlapsAny(box models.BoundingBox, dets []Detection, iou float64) bool {
	for _, d := range dets {
		if d.BBox != nil && box.IoU(*d.BBox) > iou {
			return true
		}
	}
	return false
}
