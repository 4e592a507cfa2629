package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/glam-looks-api/internal/domain"
	"github.com/glam-looks-api/internal/pkg/validate"
)

type Service interface {
	Generate(ctx context.Context, profile domain.FaceProfile) (*domain.Look, error)
}

type textModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type service struct {
	model textModel
}

type ServiceDeps struct {
	Model textModel
}

func NewService(deps ServiceDeps) Service {
	return &service{model: deps.Model}
}

// payload is the exact object the model must return.
type payload struct {
	LookName        string   `json:"lookName" validate:"required"`
	FoundationShade string   `json:"foundationShade" validate:"required"`
	LipstickShade   string   `json:"lipstickShade" validate:"required"`
	EyeshadowColors []string `json:"eyeshadowColors" validate:"required,min=1,dive,required"`
	ARPresetID      string   `json:"arPresetId" validate:"required"`
	ProductLinks    []string `json:"productLinks" validate:"required,dive,url"`
}

// Generate asks the model for one look. Output that does not parse into the
// payload schema is ErrGenerationMalformed; it is never retried.
func (s *service) Generate(ctx context.Context, profile domain.FaceProfile) (*domain.Look, error) {
	text, err := s.model.Generate(ctx, buildPrompt(profile))
	if err != nil {
		return nil, err
	}
	look, err := parseLook(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationMalformed, err)
	}
	return look, nil
}

// parseLook strictly decodes and validates model output.
func parseLook(text string) (*domain.Look, error) {
	dec := json.NewDecoder(strings.NewReader(stripFences(text)))
	dec.DisallowUnknownFields()

	var p payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode look: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode look: trailing data after object")
	}

	p.LookName = strings.TrimSpace(p.LookName)
	p.FoundationShade = strings.TrimSpace(p.FoundationShade)
	p.LipstickShade = strings.TrimSpace(p.LipstickShade)
	p.ARPresetID = strings.TrimSpace(p.ARPresetID)
	for i := range p.EyeshadowColors {
		p.EyeshadowColors[i] = strings.TrimSpace(p.EyeshadowColors[i])
	}
	p.ProductLinks = dedupe(p.ProductLinks)

	if err := validate.Struct(p); err != nil {
		return nil, err
	}
	return &domain.Look{
		LookName:        p.LookName,
		FoundationShade: p.FoundationShade,
		LipstickShade:   p.LipstickShade,
		EyeshadowColors: p.EyeshadowColors,
		ARPresetID:      p.ARPresetID,
		ProductLinks:    p.ProductLinks,
	}, nil
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:] // drop the info string, e.g. "json"
	}
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}

// dedupe trims links and drops repeats, keeping first occurrence order.
func dedupe(links []string) []string {
	if links == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, l := range links {
		l = strings.TrimSpace(l)
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
