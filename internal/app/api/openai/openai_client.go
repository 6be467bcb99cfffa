package openai

import "github.com/sashabaranov/go-openai"

// NewClient builds a client for apiKey. A non-empty baseURL points it at a compatible
// endpoint.
func NewClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}
