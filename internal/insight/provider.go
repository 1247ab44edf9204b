package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"

	"google.golang.org/genai"
)

const (
	DefaultModel       = "gemini-3-flash-preview"
	DefaultTemperature = 0.8

	systemInstruction = "You are a top-tier educational psychologist and adolescent health expert. " +
		"Your goal is to empower students based on their survey answers. Language: Kazakh."
)

// ErrUnavailable is returned by a provider that cannot reach the service at all.
var ErrUnavailable = errors.New("insight provider unavailable")

// Provider turns a finished response into a short reflection text.
type Provider interface {
	Insight(ctx context.Context, response models.SurveyResponse) (string, error)
}

// Prompt renders the fixed prompt template for a response.
func Prompt(r models.SurveyResponse) string {
	var b strings.Builder
	b.WriteString("Analyze this comprehensive anonymous survey response about drug addiction prevention from a student.\n\n")
	b.WriteString("Student's Profile:\n")
	fmt.Fprintf(&b, "- Class: %s\n", r.ClassLevel)
	fmt.Fprintf(&b, "- Gender: %s\n", r.Gender)
	fmt.Fprintf(&b, "- Leisure: %s\n\n", r.Leisure)
	b.WriteString("Awareness & Risks:\n")
	fmt.Fprintf(&b, "- Knowledge about drugs: %s\n", r.HealthAwareness)
	fmt.Fprintf(&b, "- Info Source: %s\n", r.InfoSource)
	fmt.Fprintf(&b, "- Lifestyle Value (1-5): %s\n", r.LifestyleImportance)
	fmt.Fprintf(&b, "- Reasons identified: %s\n", strings.Join(r.Reasons, ", "))
	fmt.Fprintf(&b, "- Online risk (seen ads): %s\n", r.OnlineAds)
	fmt.Fprintf(&b, "- Trust circle: %s\n\n", r.TrustPerson)
	b.WriteString("Future/Prevention:\n")
	fmt.Fprintf(&b, "- Reaction to offer: %s\n", r.ReactionToOffer)
	fmt.Fprintf(&b, "- Improvement suggestion: %s\n\n", r.PreventionSuggestions)
	b.WriteString("Based on this data, provide a very short, warm, and highly personalized psychological insight in Kazakh (3-4 sentences).\n")
	b.WriteString("Acknowledge their lifestyle choices (leisure/trust) and reinforce their strength in saying \"no\" if they showed resilience.\n")
	b.WriteString("Tone: Mentorship, Professional, Supportive.\n")
	return b.String()
}

// generator is the slice of genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiProvider generates insights with Google's Gemini API.
type GeminiProvider struct {
	models      generator
	model       string
	temperature float32
}

// NewGeminiProvider creates a Gemini-backed provider.
func NewGeminiProvider(ctx context.Context, apiKey, model string, temperature float64) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrUnavailable)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGeminiProvider(client.Models, model, temperature), nil
}

func newGeminiProvider(models generator, model string, temperature float64) *GeminiProvider {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiProvider{
		models:      models,
		model:       model,
		temperature: float32(temperature),
	}
}

// Insight implements Provider. An empty reply is reported as an error.
func (p *GeminiProvider) Insight(ctx context.Context, response models.SurveyResponse) (string, error) {
	result, err := p.models.GenerateContent(ctx,
		p.model,
		genai.Text(Prompt(response)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr(p.temperature),
		},
	)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", errors.New("GenAI returned no text")
	}
	return text, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return fmt.Sprintf("genai:%s", p.model)
}

// Unavailable always fails. It stands in when no credential is configured.
type Unavailable struct {
	Reason error
}

// Insight implements Provider.
func (u Unavailable) Insight(context.Context, models.SurveyResponse) (string, error) {
	if u.Reason != nil {
		return "", u.Reason
	}
	return "", ErrUnavailable
}
