package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glam-looks-api/internal/domain"
	"github.com/glam-looks-api/internal/infrastructure/breaker"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// contentGenerator is satisfied by *genai.GenerativeModel.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client asks a Gemini model for a single JSON look recommendation.
type Client struct {
	client *genai.Client
	model  contentGenerator
	cb     *breaker.Breaker[string]
}

// lookSchema constrains the model output to the look payload. Property names
// match the JSON keys the generator decodes.
var lookSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"lookName":        {Type: genai.TypeString},
		"foundationShade": {Type: genai.TypeString},
		"lipstickShade":   {Type: genai.TypeString},
		"eyeshadowColors": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"arPresetId":      {Type: genai.TypeString},
		"productLinks":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"lookName", "foundationShade", "lipstickShade", "eyeshadowColors", "arPresetId", "productLinks"},
}

// NewClient connects to the Gemini API with apiKey and configures modelName
// for JSON output.
func NewClient(ctx context.Context, apiKey, modelName string, temperature float32) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is not set")
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := c.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetCandidateCount(1)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = lookSchema

	return &Client{client: c, model: model, cb: newBreaker()}, nil
}

func newClientWith(model contentGenerator) *Client {
	return &Client{model: model, cb: newBreaker()}
}

func newBreaker() *breaker.Breaker[string] {
	return breaker.New[string]("gemini", breaker.Settings{
		// Caller cancellations say nothing about Gemini's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrGenerationMalformed) || errors.Is(err, context.Canceled)
		},
	})
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Generate sends prompt and returns the text of the first candidate.
// Blocked or empty responses are ErrGenerationMalformed; transport and
// service failures are ErrGenerationUnavailable.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := c.cb.Execute(func() (string, error) {
		return c.generate(ctx, prompt)
	})
	if breaker.IsOpen(err) {
		return "", fmt.Errorf("generate look: %w: %w", domain.ErrGenerationUnavailable, err)
	}
	return text, err
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", fmt.Errorf("generate content: %w: %w", domain.ErrGenerationUnavailable, ctx.Err())
		}
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", fmt.Errorf("response blocked: %w: %w", domain.ErrGenerationMalformed, err)
		}
		return "", fmt.Errorf("generate content: %w: %w", domain.ErrGenerationUnavailable, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates returned: %w", domain.ErrGenerationMalformed)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("empty response: %w", domain.ErrGenerationMalformed)
	}
	return sb.String(), nil
}
