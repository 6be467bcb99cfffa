// Package speech synthesizes mp3 audio with the OpenAI text-to-speech API.
package speech

import (
	"context"
	"io"

	"github.com/sashabaranov/go-openai"
	apperrors "voice-relay/internal/app/errors"
)

// Synthesizer implements api.SpeechSynthesizer.
type Synthesizer struct {
	client *openai.Client
	model  openai.SpeechModel
}

// NewSynthesizer creates a synthesizer using the tts-1 model.
func NewSynthesizer(client *openai.Client) *Synthesizer {
	return &Synthesizer{client: client, model: openai.TTSModel1}
}

func (s *Synthesizer) SynthesizeSpeech(ctx context.Context, text, voice string) (io.ReadCloser, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, apperrors.Service("openai.CreateSpeech", err)
	}
	return resp, nil
}
