package analysis

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	"github.com/glam-looks-api/internal/domain"
)

type Service interface {
	Analyze(ctx context.Context, storageKey string) (*domain.FaceProfile, error)
}

type imageSource interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

type faceDetector interface {
	DetectFaces(ctx context.Context, image []byte) ([]domain.FaceDetection, error)
}

type service struct {
	images    imageSource
	detector  faceDetector
	threshold float64
}

type ServiceDeps struct {
	Images   imageSource
	Detector faceDetector
	// ConfidenceThreshold in [0,1] below which skin tone is not trusted.
	ConfidenceThreshold float64
}

func NewService(deps ServiceDeps) Service {
	return &service{
		images:    deps.Images,
		detector:  deps.Detector,
		threshold: deps.ConfidenceThreshold,
	}
}

// Analyze reads the selfie at storageKey once and derives a face profile.
// Zero faces or a low-confidence primary face degrade the profile to
// "unknown" fields instead of failing; only storage, detector and image
// errors are returned.
func (s *service) Analyze(ctx context.Context, storageKey string) (*domain.FaceProfile, error) {
	data, err := s.images.Download(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	faces, err := s.detector.DetectFaces(ctx, data)
	if err != nil {
		return nil, err
	}

	face, ok := primaryFace(faces)
	if !ok {
		slog.Info("analysis ambiguous", "key", storageKey, "reason", "no face detected")
		return &domain.FaceProfile{
			SkinTone:  domain.Unknown,
			FaceShape: domain.Unknown,
			Landmarks: []domain.Landmark{},
		}, nil
	}

	// A decode failure only costs the pixel-based skin tone; the detector
	// already accepted the image.
	img, _, decodeErr := image.Decode(bytes.NewReader(data))
	if decodeErr != nil {
		slog.Warn("selfie decode failed", "key", storageKey, "error", decodeErr)
	}

	w, h := imageSize(img)
	profile := &domain.FaceProfile{
		SkinTone:   domain.Unknown,
		FaceShape:  classifyFaceShape(face, w, h),
		Landmarks:  face.Landmarks,
		Confidence: face.Confidence,
	}
	if profile.Landmarks == nil {
		profile.Landmarks = []domain.Landmark{}
	}

	switch {
	case face.Confidence < s.threshold:
		slog.Info("analysis ambiguous", "key", storageKey, "reason", "low confidence",
			"confidence", face.Confidence, "threshold", s.threshold)
	case img != nil:
		profile.SkinTone = classifySkinTone(img, face.Box)
	}
	return profile, nil
}

// primaryFace picks the highest-confidence detection; ties keep detector order.
func primaryFace(faces []domain.FaceDetection) (domain.FaceDetection, bool) {
	if len(faces) == 0 {
		return domain.FaceDetection{}, false
	}
	best := faces[0]
	for _, f := range faces[1:] {
		if f.Confidence > best.Confidence {
			best = f
		}
	}
	return best, true
}

// imageSize returns the pixel size of img, or 1x1 when unknown so that
// geometry falls back to normalized coordinates.
func imageSize(img image.Image) (w, h float64) {
	if img == nil {
		return 1, 1
	}
	b := img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}
