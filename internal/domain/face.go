package domain

// BoundingBox is a face box in coordinates normalized to the image size.
type BoundingBox struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// FaceDetection is one face reported by the detector. Confidence is in [0,1].
type FaceDetection struct {
	Confidence float64
	Box        BoundingBox
	Landmarks  []Landmark
}
