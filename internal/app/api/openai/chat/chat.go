// Package chat translates text with the OpenAI chat completion API.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	apperrors "voice-relay/internal/app/errors"
)

const systemPrompt = "You are a professional translator. Translate the user's text %s into the language with code %q. " +
	"Reply with the translation only, without quotes or commentary."

// Translator implements api.Translator on chat completions.
type Translator struct {
	client *openai.Client
	model  string
}

// NewTranslator creates a translator. An empty model selects GPT-4o mini.
func NewTranslator(client *openai.Client, model string) *Translator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Translator{client: client, model: model}
}

func (t *Translator) Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error) {
	from := "from the detected language"
	if sourceLanguage != "" {
		from = fmt.Sprintf("from %q", sourceLanguage)
	}

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(systemPrompt, from, targetLanguage),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", apperrors.Service("openai.CreateChatCompletion", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.Service("openai.CreateChatCompletion", apperrors.New("response has no choices"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
