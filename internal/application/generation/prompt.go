package generation

import (
	"fmt"
	"strings"

	"github.com/glam-looks-api/internal/domain"
)

// buildPrompt renders the face profile into the model prompt. The output is a
// pure function of the profile.
func buildPrompt(p domain.FaceProfile) string {
	var b strings.Builder
	b.WriteString("You are a professional makeup artist.\n\n")
	b.WriteString("User facial profile:\n")
	fmt.Fprintf(&b, "Skin tone: %s\n", describe(p.SkinTone))
	fmt.Fprintf(&b, "Face shape: %s\n", describe(p.FaceShape))
	fmt.Fprintf(&b, "Analysis confidence: %.2f\n\n", p.Confidence)
	b.WriteString("Recommend exactly one makeup look. Respond with a single JSON object with these keys:\n")
	b.WriteString("- lookName: short name of the look\n")
	b.WriteString("- foundationShade: foundation shade name\n")
	b.WriteString("- lipstickShade: lipstick shade name\n")
	b.WriteString("- eyeshadowColors: array of eyeshadow color names, lid to crease\n")
	b.WriteString("- arPresetId: identifier of the AR try-on preset\n")
	b.WriteString("- productLinks: array of absolute https product URLs, no duplicates\n")
	b.WriteString("Return only the JSON object.")
	return b.String()
}

func describe(v string) string {
	if v == "" || v == domain.Unknown {
		return "unknown (suggest a versatile look that suits most people)"
	}
	return v
}
