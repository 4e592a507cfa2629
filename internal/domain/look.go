package domain

import "time"

// Unknown is the sentinel for face attributes that could not be determined.
const Unknown = "unknown"

// CreatedAtLayout is fixed-width so that lexical order of stored timestamps
// equals chronological order on the user_id-created_at index.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

// FormatCreatedAt renders t in CreatedAtLayout (UTC, millisecond precision).
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(CreatedAtLayout)
}

// Landmark is a facial landmark in coordinates normalized to the image size.
type Landmark struct {
	Type string  `json:"type,omitempty" dynamodbav:"type,omitempty"`
	X    float64 `json:"x" dynamodbav:"x"`
	Y    float64 `json:"y" dynamodbav:"y"`
}

// FaceProfile is the normalized result of analysing one selfie. It is an input
// to look generation and is only persisted embedded in a LookRecommendation.
type FaceProfile struct {
	SkinTone   string     `json:"skin_tone" dynamodbav:"skin_tone" validate:"required"`
	FaceShape  string     `json:"face_shape" dynamodbav:"face_shape" validate:"required"`
	Landmarks  []Landmark `json:"landmarks" dynamodbav:"landmarks"`
	Confidence float64    `json:"confidence" dynamodbav:"confidence" validate:"gte=0,lte=1"`
}

// Ambiguous reports whether analysis fell back to the sentinel skin tone.
func (p FaceProfile) Ambiguous() bool {
	return p.SkinTone == Unknown
}

// Look holds the generated fields of a recommendation.
type Look struct {
	LookName        string   `json:"look_name" dynamodbav:"look_name" validate:"required"`
	FoundationShade string   `json:"foundation_shade" dynamodbav:"foundation_shade" validate:"required"`
	LipstickShade   string   `json:"lipstick_shade" dynamodbav:"lipstick_shade" validate:"required"`
	EyeshadowColors []string `json:"eyeshadow_colors" dynamodbav:"eyeshadow_colors" validate:"required,min=1,dive,required"`
	ARPresetID      string   `json:"ar_preset_id" dynamodbav:"ar_preset_id" validate:"required"`
	ProductLinks    []string `json:"product_links" dynamodbav:"product_links" validate:"unique,dive,url"`
}

// LookRecommendation is one persisted, immutable recommendation.
// PK: user_id, SK: upload_id. LSI user_id-created_at-index orders a user's history.
type LookRecommendation struct {
	UserID      string      `json:"user_id" dynamodbav:"user_id" validate:"required"`
	UploadID    string      `json:"upload_id" dynamodbav:"upload_id" validate:"required"`
	FaceProfile FaceProfile `json:"face_profile" dynamodbav:"face_profile"`
	Look
	CreatedAt string `json:"created_at" dynamodbav:"created_at" validate:"required,datetime=2006-01-02T15:04:05.000Z"`
}

// LookPage is one page of a user's looks, newest first.
type LookPage struct {
	Items      []LookRecommendation `json:"data"`
	NextCursor string               `json:"next_cursor,omitempty"`
}
