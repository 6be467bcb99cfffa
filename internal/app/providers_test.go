package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"voice-relay/internal/app/model"
	"voice-relay/internal/app/repository"
	"voice-relay/internal/app/storage"
	"voice-relay/internal/app/testutil"
	"voice-relay/internal/config"
)

type nopJobStore struct{ repository.JobStore }

type unreachableJobStore struct{ nopJobStore }

func (unreachableJobStore) Ping(ctx context.Context) error {
	return errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
}

type healthyTemporal struct{ client.Client }

func (healthyTemporal) CheckHealth(ctx context.Context, req *client.CheckHealthRequest) (*client.CheckHealthResponse, error) {
	return &client.CheckHealthResponse{}, nil
}

func openAIConfig() *config.Config {
	return &config.Config{
		TranscriptionProvider: config.ProviderOpenAI,
		TranslationProvider:   config.ProviderOpenAI,
		SynthesisProvider:     config.ProviderOpenAI,
		StorageBackend:        config.StorageMinIO,
		Orchestrator:          config.OrchestratorTemporal,
		APIKeys:               config.APIKeys{OpenAI: "sk-test"},
		PollInterval:          30 * time.Second,
	}
}

func TestProvideProviders_OpenAIOnly(t *testing.T) {
	cfg := openAIConfig()
	require.False(t, cfg.UsesAWS())

	aws, err := provideAWSClients(cfg)
	require.NoError(t, err)
	assert.Nil(t, aws)

	p, err := provideProviders(context.Background(), cfg, nil, testutil.NewMemoryStore(), nopJobStore{}, zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, p.Transcriber)
	assert.NotNil(t, p.Translator)
	assert.NotNil(t, p.Speech)
	// long texts are chunked when there is no task API
	assert.Nil(t, p.SynthesisTasks)
	assert.Contains(t, p.StatusSources, model.JobKindTranscription)
	assert.NotContains(t, p.StatusSources, model.JobKindSynthesis)
}

func TestProvideNotificationSource(t *testing.T) {
	assert.Nil(t, provideNotificationSource(testutil.NewMemoryStore()))
	assert.NotNil(t, provideNotificationSource(&storage.MinioStore{}))
}

func TestProvidePipeline(t *testing.T) {
	cfg := openAIConfig()
	cfg.TranslationProvider = config.ProviderAWS

	p := providePipeline(cfg)

	assert.Equal(t, 30*time.Second, p.PollInterval)
	assert.Equal(t, int(transcriptionTimeout/(30*time.Second)), p.MaxPolls)
	// the openai budget is the slowest of the three
	assert.Equal(t, int32(config.DefaultOpenAIMaxRetries), p.Attempts)
	assert.Equal(t, 2*time.Second, p.RetryInterval)
}

func TestProvideLazyTemporalClient_OtherOrchestrator(t *testing.T) {
	cfg := openAIConfig()
	cfg.Orchestrator = config.OrchestratorStepFunctions

	c, cleanup, err := provideLazyTemporalClient(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, c)
	cleanup()
}

func TestProvideHealthServer_RedisCheck(t *testing.T) {
	cfg := openAIConfig()

	hs := provideHealthServer(cfg, healthyTemporal{}, testutil.NewMemoryStore(), unreachableJobStore{}, prometheus.NewRegistry(), zap.NewNop())
	status := hs.Status(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
	require.Len(t, status.Dependencies, 2)
	assert.Equal(t, "redis", status.Dependencies[0].Name)
	assert.False(t, status.Dependencies[0].Connected)
	assert.Contains(t, status.Dependencies[0].Error, "connection refused")
	assert.Equal(t, "temporal", status.Dependencies[1].Name)
	assert.True(t, status.Dependencies[1].Connected)

	// stores without a connection report only temporal
	hs = provideHealthServer(cfg, healthyTemporal{}, testutil.NewMemoryStore(), nopJobStore{}, prometheus.NewRegistry(), zap.NewNop())
	status = hs.Status(context.Background())
	assert.Equal(t, "healthy", status.Status)
	require.Len(t, status.Dependencies, 1)
	assert.Equal(t, "temporal", status.Dependencies[0].Name)
}
