package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"github.com/kdimtricp/lecturepulse/internal/models"
)

const defaultMaxFaces = 50

// GoogleVisionDetector finds faces and head angles with Cloud Vision
// FACE_DETECTION.
type GoogleVisionDetector struct {
	service  *vision.Service
	maxFaces int64
}

func NewGoogleVisionDetector(ctx context.Context, opts ...option.ClientOption) (*GoogleVisionDetector, error) {
	service, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision service: %w", err)
	}
	return &GoogleVisionDetector{service: service, maxFaces: defaultMaxFaces}, nil
}

func NewGoogleVisionDetectorWithAPIKey(ctx context.Context, apiKey string) (*GoogleVisionDetector, error) {
	return NewGoogleVisionDetector(ctx, option.WithAPIKey(apiKey))
}

// NewGoogleVisionDetectorWithServiceAccount authenticates with a service
// account key file.
func NewGoogleVisionDetectorWithServiceAccount(ctx context.Context, keyFile string) (*GoogleVisionDetector, error) {
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, vision.CloudVisionScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}
	return NewGoogleVisionDetector(ctx, option.WithTokenSource(creds.TokenSource))
}

func (d *GoogleVisionDetector) Detect(ctx context.Context, img Image) ([]Detection, error) {
	jpeg, err := img.EncodeJPEG()
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image:    &vision.Image{Content: base64.StdEncoding.EncodeToString(jpeg)},
			Features: []*vision.Feature{{Type: "FACE_DETECTION", MaxResults: d.maxFaces}},
		}},
	}
	resp, err := d.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to annotate image: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("no response from Google Vision API")
	}
	response := resp.Responses[0]
	if response.Error != nil {
		return nil, fmt.Errorf("Google Vision API error: %s", response.Error.Message)
	}

	size := img.Size()
	detections := make([]Detection, 0, len(response.FaceAnnotations))
	for _, face := range response.FaceAnnotations {
		det := Detection{Confidence: face.DetectionConfidence}
		poly := face.FdBoundingPoly
		if poly == nil {
			poly = face.BoundingPoly
		}
		if box, ok := polygonBox(poly); ok {
			clipped := box.Clip(size.X, size.Y)
			det.BBox = &clipped
		}
		// Angles are meaningless when landmarking failed.
		if face.LandmarkingConfidence > 0 {
			det.Pose = &models.HeadPose{
				Yaw:   face.PanAngle,
				// Vision reports tilt positive upwards.
				Pitch: -face.TiltAngle,
				Roll:  face.RollAngle,
			}
		}
		detections = append(detections, det)
	}
	return detections, nil
}

func polygonBox(poly *vision.BoundingPoly) (models.BoundingBox, bool) {
	if poly == nil || len(poly.Vertices) < 4 {
		return models.BoundingBox{}, false
	}
	minX, minY := poly.Vertices[0].X, poly.Vertices[0].Y
	maxX, maxY := minX, minY
	for _, v := range poly.Vertices {
		minX = min(minX, v.X)
		maxX = max(maxX, v.X)
		minY = min(minY, v.Y)
		maxY = max(maxY, v.Y)
	}
	box := models.BoundingBox{
		X:      int(minX),
		Y:      int(minY),
		Width:  int(maxX - minX),
		Height: int(maxY - minY),
	}
	return box, !box.Empty()
}
