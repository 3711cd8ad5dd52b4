package ai

import (
	"image"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

type fakeImage struct {
	size    image.Point
	jpeg    []byte
	encErr  error
	closed  bool
	cropped []models.BoundingBox
}

func (f *fakeImage) Size() image.Point { return f.size }

func (f *fakeImage) Crop(box models.BoundingBox) (Image, error) {
	f.cropped = append(f.cropped, box)
	return &fakeImage{size: image.Pt(box.Width, box.Height), jpeg: f.jpeg}, nil
}

func (f *fakeImage) EncodeJPEG() ([]byte, error) { return f.jpeg, f.encErr }

func (f *fakeImage) Close() error {
	f.closed = true
	return nil
}
