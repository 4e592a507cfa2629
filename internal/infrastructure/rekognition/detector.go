package rekognition

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/glam-looks-api/internal/domain"
	"github.com/glam-looks-api/internal/infrastructure/breaker"
)

// API is the subset of the Rekognition client the detector uses.
type API interface {
	DetectFaces(ctx context.Context, in *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// Detector finds faces in image bytes with Rekognition DetectFaces.
type Detector struct {
	client API
	cb     *breaker.Breaker[[]domain.FaceDetection]
}

// NewClient creates a Rekognition client, pointed at endpointURL when set.
func NewClient(awsCfg aws.Config, endpointURL string) *rekognition.Client {
	clientOpts := []func(*rekognition.Options){}
	if endpointURL != "" {
		clientOpts = append(clientOpts, func(o *rekognition.Options) {
			o.BaseEndpoint = aws.String(endpointURL)
		})
	}
	return rekognition.NewFromConfig(awsCfg, clientOpts...)
}

func NewDetector(client API) *Detector {
	return &Detector{
		client: client,
		cb: breaker.New[[]domain.FaceDetection]("rekognition", breaker.Settings{
			// Caller cancellations say nothing about Rekognition's health.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, domain.ErrBadRequest) || errors.Is(err, context.Canceled)
			},
		}),
	}
}

// DetectFaces returns every face found in image, in detector order.
// An empty result is not an error.
func (d *Detector) DetectFaces(ctx context.Context, image []byte) ([]domain.FaceDetection, error) {
	faces, err := d.cb.Execute(func() ([]domain.FaceDetection, error) {
		return d.detect(ctx, image)
	})
	if breaker.IsOpen(err) {
		return nil, fmt.Errorf("detect faces: %w: %w", domain.ErrAnalysisUnavailable, err)
	}
	return faces, err
}

func (d *Detector) detect(ctx context.Context, image []byte) ([]domain.FaceDetection, error) {
	out, err := d.client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: image},
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("detect faces: %w: %w", domain.ErrAnalysisUnavailable, ctx.Err())
		}
		return nil, mapError(err)
	}
	faces := make([]domain.FaceDetection, 0, len(out.FaceDetails))
	for _, fd := range out.FaceDetails {
		faces = append(faces, toDetection(fd))
	}
	return faces, nil
}

func toDetection(fd types.FaceDetail) domain.FaceDetection {
	det := domain.FaceDetection{
		// Rekognition reports confidence as a percentage.
		Confidence: clamp01(float64(aws.ToFloat32(fd.Confidence)) / 100),
		Landmarks:  make([]domain.Landmark, 0, len(fd.Landmarks)),
	}
	if bb := fd.BoundingBox; bb != nil {
		det.Box = domain.BoundingBox{
			Left:   float64(aws.ToFloat32(bb.Left)),
			Top:    float64(aws.ToFloat32(bb.Top)),
			Width:  float64(aws.ToFloat32(bb.Width)),
			Height: float64(aws.ToFloat32(bb.Height)),
		}
	}
	for _, lm := range fd.Landmarks {
		det.Landmarks = append(det.Landmarks, domain.Landmark{
			Type: string(lm.Type),
			X:    float64(aws.ToFloat32(lm.X)),
			Y:    float64(aws.ToFloat32(lm.Y)),
		})
	}
	return det
}

func mapError(err error) error {
	var (
		badFormat *types.InvalidImageFormatException
		tooLarge  *types.ImageTooLargeException
		badParam  *types.InvalidParameterException
	)
	if errors.As(err, &badFormat) || errors.As(err, &tooLarge) || errors.As(err, &badParam) {
		return fmt.Errorf("malformed image: %w: %w", domain.ErrBadRequest, err)
	}
	return fmt.Errorf("detect faces: %w: %w", domain.ErrAnalysisUnavailable, err)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
