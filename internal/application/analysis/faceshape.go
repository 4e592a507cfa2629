package analysis

import (
	"math"

	"github.com/glam-looks-api/internal/domain"
)

// Rekognition landmark types used for jaw geometry.
const (
	lmUpperJawLeft  = "upperJawlineLeft"
	lmUpperJawRight = "upperJawlineRight"
	lmMidJawLeft    = "midJawlineLeft"
	lmMidJawRight   = "midJawlineRight"
)

// classifyFaceShape derives a face shape from the box aspect in pixels and,
// when present, the jawline taper. It never looks at confidence.
func classifyFaceShape(face domain.FaceDetection, imgW, imgH float64) string {
	boxW, boxH := face.Box.Width*imgW, face.Box.Height*imgH
	if boxW <= 0 || boxH <= 0 {
		return "oval"
	}
	ratio := boxH / boxW

	taper, ok := jawTaper(face.Landmarks, imgW, imgH)
	switch {
	case ratio >= 1.5:
		return "oblong"
	case ok && taper < 0.72:
		return "heart"
	case ok && taper >= 0.9 && ratio < 1.35:
		return "square"
	case ratio < 1.2:
		return "round"
	default:
		return "oval"
	}
}

// jawTaper is mid-jaw width over upper-jaw width, measured in pixels.
func jawTaper(landmarks []domain.Landmark, imgW, imgH float64) (float64, bool) {
	pts := make(map[string]domain.Landmark, len(landmarks))
	for _, lm := range landmarks {
		pts[lm.Type] = lm
	}
	ul, ok1 := pts[lmUpperJawLeft]
	ur, ok2 := pts[lmUpperJawRight]
	ml, ok3 := pts[lmMidJawLeft]
	mr, ok4 := pts[lmMidJawRight]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return 0, false
	}
	upper := dist(ul, ur, imgW, imgH)
	if upper == 0 {
		return 0, false
	}
	return dist(ml, mr, imgW, imgH) / upper, true
}

func dist(a, b domain.Landmark, imgW, imgH float64) float64 {
	return math.Hypot((a.X-b.X)*imgW, (a.Y-b.Y)*imgH)
}
