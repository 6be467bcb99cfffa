package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
	apperrors "voice-relay/internal/app/errors"
)

type fakeModels struct {
	model  string
	prompt string
	system string
	reply  string
	err    error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.prompt = contents[0].Parts[0].Text
	f.system = config.SystemInstruction.Parts[0].Text
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(f.reply, genai.RoleModel)},
		},
	}, nil
}

func TestTranslator_Translate(t *testing.T) {
	models := &fakeModels{reply: "bonjour\n"}
	translator := newTranslator(models, "")

	text, err := translator.Translate(context.Background(), "hello", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "bonjour", text)
	assert.Equal(t, DefaultModel, models.model)
	assert.Equal(t, "hello", models.prompt)
	assert.Contains(t, models.system, `"fr"`)
	assert.Contains(t, models.system, `"en"`)
}

func TestTranslator_Errors(t *testing.T) {
	_, err := newTranslator(&fakeModels{err: errors.New("quota exceeded")}, "").Translate(context.Background(), "hello", "", "de")
	require.Error(t, err)
	assert.True(t, apperrors.IsServiceError(err))

	_, err = newTranslator(&fakeModels{reply: "  "}, "").Translate(context.Background(), "hello", "", "de")
	assert.True(t, apperrors.IsServiceError(err))
}
