package insight

import (
	"context"
	"errors"
	"testing"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type stubGenerator struct {
	reply     string
	err       error
	gotModel  string
	gotPrompt string
	gotConfig *genai.GenerateContentConfig
}

func (s *stubGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.gotModel = model
	s.gotConfig = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		s.gotPrompt = contents[0].Parts[0].Text
	}
	if s.err != nil {
		return nil, s.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: s.reply}}},
		}},
	}, nil
}

func sampleResponse() models.SurveyResponse {
	r := models.NewSurveyResponse()
	r.ClassLevel = "10-сынып"
	r.Gender = "Ер"
	r.Leisure = "Спорт"
	r.Reasons = []string{"Стресс", "Жалғыздық"}
	r.TrustPerson = "Ата-ана"
	r.ReactionToOffer = "Бас тартамын"
	r.PreventionSuggestions = "Көбірек спорт"
	return r
}

func TestPrompt_InterpolatesFields(t *testing.T) {
	p := Prompt(sampleResponse())

	assert.Contains(t, p, "- Class: 10-сынып")
	assert.Contains(t, p, "- Gender: Ер")
	assert.Contains(t, p, "- Leisure: Спорт")
	assert.Contains(t, p, "- Reasons identified: Стресс, Жалғыздық")
	assert.Contains(t, p, "- Trust circle: Ата-ана")
	assert.Contains(t, p, "- Reaction to offer: Бас тартамын")
	assert.Contains(t, p, "- Improvement suggestion: Көбірек спорт")
}

func TestGeminiProvider_Insight(t *testing.T) {
	gen := &stubGenerator{reply: "  Жарайсың!  "}
	p := newGeminiProvider(gen, "", DefaultTemperature)

	text, err := p.Insight(context.Background(), sampleResponse())
	require.NoError(t, err)
	assert.Equal(t, "Жарайсың!", text)
	assert.Equal(t, DefaultModel, gen.gotModel)
	assert.Contains(t, gen.gotPrompt, "- Class: 10-сынып")
	require.NotNil(t, gen.gotConfig.Temperature)
	assert.InDelta(t, 0.8, *gen.gotConfig.Temperature, 0.0001)
	assert.Equal(t, "genai:"+DefaultModel, p.Name())
}

func TestGeminiProvider_EmptyAndErrors(t *testing.T) {
	_, err := newGeminiProvider(&stubGenerator{reply: ""}, "m", 0.5).Insight(context.Background(), sampleResponse())
	assert.Error(t, err)

	boom := errors.New("quota exceeded")
	_, err = newGeminiProvider(&stubGenerator{err: boom}, "m", 0.5).Insight(context.Background(), sampleResponse())
	assert.ErrorIs(t, err, boom)
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), "", "", DefaultTemperature)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.Insight(context.Background(), sampleResponse())
	assert.ErrorIs(t, err, ErrUnavailable)

	reason := errors.New("bad key")
	_, err = Unavailable{Reason: reason}.Insight(context.Background(), sampleResponse())
	assert.ErrorIs(t, err, reason)
}
