package analysis

import (
	"image"
	"image/color"
	"testing"

	"github.com/glam-looks-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

var fullBox = domain.BoundingBox{Left: 0, Top: 0, Width: 1, Height: 1}

func TestClassifySkinTone(t *testing.T) {
	cases := []struct {
		name string
		c    color.RGBA
		want string
	}{
		{"medium warm", color.RGBA{205, 160, 120, 255}, "medium-warm"},
		{"fair cool", color.RGBA{240, 200, 190, 255}, "fair-cool"},
		{"fair neutral", color.RGBA{240, 210, 195, 255}, "fair-neutral"},
		{"light neutral", color.RGBA{200, 150, 130, 255}, "light-neutral"},
		{"tan warm", color.RGBA{190, 140, 100, 255}, "tan-warm"},
		{"deep neutral", color.RGBA{90, 56, 37, 255}, "deep-neutral"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifySkinTone(solid(100, 100, tc.c), fullBox))
		})
	}
}

func TestClassifySkinTone_SamplesOnlyTheCheekBand(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			c := color.RGBA{0, 0, 255, 255}
			if y >= 45 && y < 75 && x >= 20 && x < 80 {
				c = color.RGBA{205, 160, 120, 255}
			}
			img.Set(x, y, c)
		}
	}

	assert.Equal(t, "medium-warm", classifySkinTone(img, fullBox))
}

func TestClassifySkinTone_BoxOutsideImage(t *testing.T) {
	box := domain.BoundingBox{Left: 1.5, Top: 1.5, Width: 0.2, Height: 0.2}

	assert.Equal(t, domain.Unknown, classifySkinTone(solid(10, 10, color.White), box))
}

func TestClassifyFaceShape(t *testing.T) {
	jaw := func(upperHalf, midHalf float64) []domain.Landmark {
		return []domain.Landmark{
			{Type: lmUpperJawLeft, X: 0.5 - upperHalf, Y: 0.4},
			{Type: lmUpperJawRight, X: 0.5 + upperHalf, Y: 0.4},
			{Type: lmMidJawLeft, X: 0.5 - midHalf, Y: 0.6},
			{Type: lmMidJawRight, X: 0.5 + midHalf, Y: 0.6},
		}
	}
	cases := []struct {
		name string
		face domain.FaceDetection
		want string
	}{
		{"oblong", domain.FaceDetection{Box: domain.BoundingBox{Width: 0.3, Height: 0.5}}, "oblong"},
		{"round", domain.FaceDetection{Box: domain.BoundingBox{Width: 0.4, Height: 0.44}}, "round"},
		{"oval", domain.FaceDetection{Box: domain.BoundingBox{Width: 0.4, Height: 0.54}}, "oval"},
		{"heart", domain.FaceDetection{Box: domain.BoundingBox{Width: 0.4, Height: 0.54}, Landmarks: jaw(0.2, 0.12)}, "heart"},
		{"square", domain.FaceDetection{Box: domain.BoundingBox{Width: 0.4, Height: 0.5}, Landmarks: jaw(0.2, 0.19)}, "square"},
		{"oval with soft jaw", domain.FaceDetection{Box: domain.BoundingBox{Width: 0.4, Height: 0.54}, Landmarks: jaw(0.2, 0.16)}, "oval"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyFaceShape(tc.face, 1000, 1000))
		})
	}
}

func TestClassifyFaceShape_UsesPixelAspect(t *testing.T) {
	// Square in normalized units, but the image is twice as tall as wide.
	face := domain.FaceDetection{Box: domain.BoundingBox{Width: 0.4, Height: 0.4}}

	assert.Equal(t, "round", classifyFaceShape(face, 1000, 1000))
	assert.Equal(t, "oblong", classifyFaceShape(face, 500, 1000))
}

func TestClassifyFaceShape_IgnoresConfidence(t *testing.T) {
	face := domain.FaceDetection{Box: domain.BoundingBox{Width: 0.4, Height: 0.54}}
	low := face
	low.Confidence = 0.1
	face.Confidence = 0.99

	assert.Equal(t, classifyFaceShape(face, 800, 600), classifyFaceShape(low, 800, 600))
}
