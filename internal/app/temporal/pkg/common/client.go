package common

import (
	"fmt"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"voice-relay/internal/config"
)

func clientOptions(cfg config.TemporalConfig, logger *zap.Logger) client.Options {
	return client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    NewZapAdapter(logger),
	}
}

// NewTemporalClient creates a new Temporal client with the given configuration
func NewTemporalClient(cfg config.TemporalConfig, logger *zap.Logger) (client.Client, error) {
	c, err := client.Dial(clientOptions(cfg, logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Temporal client: %w", err)
	}
	return c, nil
}

// NewLazyTemporalClient creates a client that connects on first use. Commands that may
// never start a workflow use it.
func NewLazyTemporalClient(cfg config.TemporalConfig, logger *zap.Logger) (client.Client, error) {
	c, err := client.NewLazyClient(clientOptions(cfg, logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Temporal client: %w", err)
	}
	return c, nil
}
