// Package opencv implements the ai collaborators on top of gocv.
package opencv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/kdimtricp/lecturepulse/internal/ai"
	"github.com/kdimtricp/lecturepulse/internal/models"
)

// Mat is an ai.Image backed by a BGR gocv.Mat that it owns.
type Mat struct {
	mat gocv.Mat
}

func NewMat(m gocv.Mat) *Mat {
	return &Mat{mat: m}
}

func (m *Mat) Mat() gocv.Mat { return m.mat }

func (m *Mat) Size() image.Point {
	return image.Pt(m.mat.Cols(), m.mat.Rows())
}

func (m *Mat) Crop(box models.BoundingBox) (ai.Image, error) {
	size := m.Size()
	if size.X == 0 || size.Y == 0 {
		return nil, fmt.Errorf("crop of empty image")
	}
	b := box.Clip(size.X, size.Y)
	region := m.mat.Region(image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height))
	defer region.Close()
	return &Mat{mat: region.Clone()}, nil
}

func (m *Mat) EncodeJPEG() ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, m.mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	defer buf.Close()
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// DecodeImage decodes an encoded still image (JPEG, PNG, ...).
func DecodeImage(data []byte) (ai.Image, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("decode image: unsupported or corrupt data")
	}
	return NewMat(mat), nil
}

func (m *Mat) Close() error {
	return m.mat.Close()
}

// asMat returns the underlying Mat, decoding through JPEG when img comes
// from another implementation. The caller closes the result when owned.
func asMat(img ai.Image) (mat gocv.Mat, owned bool, err error) {
	if m, ok := img.(*Mat); ok {
		return m.mat, false, nil
	}
	data, err := img.EncodeJPEG()
	if err != nil {
		return gocv.Mat{}, false, err
	}
	decoded, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, false, fmt.Errorf("decode image: %w", err)
	}
	return decoded, true, nil
}
