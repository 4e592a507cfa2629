package analysis

import (
	"image"
	"math"

	"github.com/glam-looks-api/internal/domain"
)

// samplesPerAxis bounds the work per image regardless of resolution.
const samplesPerAxis = 48

// Cheek band of the face box, as fractions of its width and height.
const (
	bandLeft   = 0.20
	bandRight  = 0.80
	bandTop    = 0.45
	bandBottom = 0.75
)

// classifySkinTone samples the cheek band of box and returns "<depth>-<undertone>",
// or "unknown" when the band holds no pixels. The result is a pure function
// of the pixels and the box.
func classifySkinTone(img image.Image, box domain.BoundingBox) string {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	x0 := b.Min.X + int((box.Left+box.Width*bandLeft)*w)
	x1 := b.Min.X + int((box.Left+box.Width*bandRight)*w)
	y0 := b.Min.Y + int((box.Top+box.Height*bandTop)*h)
	y1 := b.Min.Y + int((box.Top+box.Height*bandBottom)*h)
	r := image.Rect(x0, y0, x1, y1).Intersect(b)
	if r.Empty() {
		return domain.Unknown
	}

	stepX := max(1, r.Dx()/samplesPerAxis)
	stepY := max(1, r.Dy()/samplesPerAxis)
	var sumL, sumA, sumB float64
	var n int
	for y := r.Min.Y; y < r.Max.Y; y += stepY {
		for x := r.Min.X; x < r.Max.X; x += stepX {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			l, a, bb := srgbToLab(float64(cr)/0xffff, float64(cg)/0xffff, float64(cb)/0xffff)
			sumL += l
			sumA += a
			sumB += bb
			n++
		}
	}
	l, a, bb := sumL/float64(n), sumA/float64(n), sumB/float64(n)
	return depth(l, bb) + "-" + undertone(a, bb)
}

// depth buckets the Individual Typology Angle, ITA = atan((L-50)/b).
func depth(l, b float64) string {
	ita := math.Atan2(l-50, b) * 180 / math.Pi
	switch {
	case ita > 55:
		return "fair"
	case ita > 41:
		return "light"
	case ita > 28:
		return "medium"
	case ita > 10:
		return "tan"
	default:
		return "deep"
	}
}

// undertone uses the CIELAB hue angle: yellow-leaning skin reads warm,
// red-leaning skin reads cool.
func undertone(a, b float64) string {
	hue := math.Atan2(b, a) * 180 / math.Pi
	switch {
	case hue >= 58:
		return "warm"
	case hue <= 45:
		return "cool"
	default:
		return "neutral"
	}
}

// srgbToLab converts sRGB components in [0,1] to CIELAB under D65.
func srgbToLab(r, g, b float64) (l, a, bb float64) {
	r, g, b = linearize(r), linearize(g), linearize(b)
	x := (0.4124*r + 0.3576*g + 0.1805*b) / 0.95047
	y := 0.2126*r + 0.7152*g + 0.0722*b
	z := (0.0193*r + 0.1192*g + 0.9505*b) / 1.08883
	fx, fy, fz := labF(x), labF(y), labF(z)
	return 116*fy - 16, 500 * (fx - fy), 200 * (fy - fz)
}

func linearize(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3*delta*delta) + 4.0/29.0
}
