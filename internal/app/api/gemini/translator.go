// Package gemini translates text with the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
	apperrors "voice-relay/internal/app/errors"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Translator implements api.Translator on Gemini.
type Translator struct {
	models contentGenerator
	model  string
}

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// NewTranslator creates a translator from a client.
func NewTranslator(client *genai.Client, model string) *Translator {
	return newTranslator(client.Models, model)
}

func newTranslator(models contentGenerator, model string) *Translator {
	if model == "" {
		model = DefaultModel
	}
	return &Translator{models: models, model: model}
}

func (t *Translator) Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error) {
	from := "Detect the source language."
	if sourceLanguage != "" {
		from = fmt.Sprintf("The source language code is %q.", sourceLanguage)
	}

	temperature := float32(0)
	resp, err := t.models.GenerateContent(ctx, t.model, genai.Text(text), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(
			fmt.Sprintf("Translate the user's text into the language with code %q. %s Reply with the translation only.", targetLanguage, from),
			genai.RoleUser,
		),
		Temperature: &temperature,
	})
	if err != nil {
		return "", apperrors.Service("gemini.GenerateContent", err)
	}

	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", apperrors.Service("gemini.GenerateContent", apperrors.New("response has no text"))
	}
	return out, nil
}
