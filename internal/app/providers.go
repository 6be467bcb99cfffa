package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	sdkworker "go.temporal.io/sdk/worker"
	"go.uber.org/zap"
	"voice-relay/internal/app/api"
	"voice-relay/internal/app/api/amazon"
	"voice-relay/internal/app/api/gemini"
	"voice-relay/internal/app/api/openai"
	"voice-relay/internal/app/api/openai/chat"
	"voice-relay/internal/app/api/openai/speech"
	"voice-relay/internal/app/api/openai/whisper"
	"voice-relay/internal/app/jobs"
	"voice-relay/internal/app/metrics"
	"voice-relay/internal/app/model"
	"voice-relay/internal/app/repository"
	"voice-relay/internal/app/repository/pg"
	"voice-relay/internal/app/repository/sqlite"
	"voice-relay/internal/app/storage"
	"voice-relay/internal/app/synthesis"
	"voice-relay/internal/app/temporal/activities"
	"voice-relay/internal/app/temporal/pkg/common"
	"voice-relay/internal/app/temporal/worker"
	"voice-relay/internal/app/temporal/workflows"
	"voice-relay/internal/app/translation"
	"voice-relay/internal/app/trigger"
	"voice-relay/internal/config"
)

// transcriptionTimeout bounds how long the workflow polls one transcription job.
const transcriptionTimeout = 2 * time.Hour

// Providers are the managed services selected by the *_PROVIDER variables.
type Providers struct {
	Transcriber    api.TranscriptionStarter
	Translator     api.Translator
	Speech         api.SpeechSynthesizer
	SynthesisTasks api.SynthesisTaskStarter
	StatusSources  map[model.JobKind]api.StatusSource
}

func provideConfig() (*config.Config, error) {
	return config.Load()
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, err := common.NewLogger(cfg.Development())
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// provideAWSClients returns nil when no component needs AWS.
func provideAWSClients(cfg *config.Config) (*amazon.Clients, error) {
	if !cfg.UsesAWS() {
		return nil, nil
	}
	sess, err := amazon.NewSession(cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	return amazon.NewClients(sess), nil
}

func provideStore(ctx context.Context, cfg *config.Config, aws *amazon.Clients) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		return storage.NewS3Store(aws.S3), nil
	default:
		return storage.NewMinioStore(ctx, cfg.MinIO)
	}
}

// provideNotificationSource returns the bucket listener, or nil for backends that deliver
// notifications only through the webhook.
func provideNotificationSource(store storage.Store) trigger.NotificationSource {
	if src, ok := store.(trigger.NotificationSource); ok {
		return src
	}
	return nil
}

func provideRedisClient(cfg *config.Config) (*redis.Client, func()) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return rdb, func() { _ = rdb.Close() }
}

func provideJobStore(rdb *redis.Client) repository.JobStore {
	return repository.NewRedisJobStore(rdb, repository.DefaultJobTTL)
}

func provideProviders(ctx context.Context, cfg *config.Config, aws *amazon.Clients, store storage.Store, jobStore repository.JobStore, logger *zap.Logger) (*Providers, error) {
	p := &Providers{StatusSources: map[model.JobKind]api.StatusSource{}}

	openaiClient := openai.NewClient(cfg.APIKeys.OpenAI, os.Getenv("OPENAI_BASE_URL"))

	switch cfg.TranscriptionProvider {
	case config.ProviderOpenAI:
		rt := whisper.NewRemoteTranscriber(openaiClient, store, jobStore, logger.Named("whisper"))
		p.Transcriber = rt
		p.StatusSources[model.JobKindTranscription] = rt
	default:
		t := amazon.NewTranscribe(aws.Transcribe)
		p.Transcriber = t
		p.StatusSources[model.JobKindTranscription] = t
	}

	switch cfg.TranslationProvider {
	case config.ProviderOpenAI:
		p.Translator = chat.NewTranslator(openaiClient, os.Getenv("OPENAI_CHAT_MODEL"))
	case config.ProviderGemini:
		gc, err := gemini.NewClient(ctx, cfg.APIKeys.Gemini)
		if err != nil {
			return nil, err
		}
		p.Translator = gemini.NewTranslator(gc, os.Getenv("GEMINI_MODEL"))
	default:
		t := amazon.NewTranslate(aws.Translate)
		p.Translator = t
		p.StatusSources[model.JobKindTranslation] = t
	}

	switch cfg.SynthesisProvider {
	case config.ProviderOpenAI:
		p.Speech = speech.NewSynthesizer(openaiClient)
	default:
		polly := amazon.NewPolly(aws.Polly)
		p.Speech = polly
		p.SynthesisTasks = polly
		p.StatusSources[model.JobKindSynthesis] = polly
	}
	return p, nil
}

func provideVoices(cfg *config.Config) (config.VoiceTable, error) {
	return config.LoadVoiceTable(cfg.VoicesFile, cfg.SynthesisProvider, cfg.DefaultVoice)
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideProviderMetrics(reg *prometheus.Registry) (*metrics.ProviderMetrics, error) {
	return metrics.NewProviderMetrics(reg)
}

func provideRunDAO(cfg *config.Config) (repository.RunDAO, func(), error) {
	var (
		dao repository.RunDAO
		err error
	)
	switch cfg.Database.Driver {
	case "postgres":
		dao, err = openPostgres(cfg.Database.URL)
	default:
		dao, err = sqlite.NewSQLiteDB(cfg.Database.SQLitePath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return dao, func() { _ = dao.Close() }, nil
}

func openPostgres(url string) (*pg.PostgresDB, error) {
	db, err := pg.NewPostgresDB(url)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func provideLauncher(cfg *config.Config, p *Providers, logger *zap.Logger) *jobs.Launcher {
	return jobs.NewLauncher(p.Transcriber, p.SynthesisTasks, jobs.LauncherConfig{
		MediaFormat:  cfg.MediaFormat,
		LanguageCode: cfg.SourceLanguage,
	}, logger.Named("launcher"))
}

func providePoller(cfg *config.Config, p *Providers, logger *zap.Logger) *jobs.Poller {
	return jobs.NewPoller(p.StatusSources, cfg.PollInterval, logger.Named("poller"))
}

func provideStatusHandler(poller *jobs.Poller, logger *zap.Logger) *jobs.StatusHandler {
	return jobs.NewStatusHandler(poller, logger.Named("status"))
}

func provideBatchTranslator(cfg *config.Config, p *Providers, store storage.Store, m *metrics.ProviderMetrics, logger *zap.Logger) *translation.BatchTranslator {
	return translation.NewBatchTranslator(p.Translator, store, translation.Options{
		SourceLanguage: cfg.SourceLanguage,
		FailFast:       cfg.BatchFailFast,
		Concurrency:    cfg.BatchConcurrency,
		Provider:       cfg.TranslationProvider,
	}, m, logger.Named("translation"))
}

func provideBatchSynthesizer(cfg *config.Config, p *Providers, store storage.Store, voices config.VoiceTable, launcher *jobs.Launcher, poller *jobs.Poller, m *metrics.ProviderMetrics, logger *zap.Logger) *synthesis.BatchSynthesizer {
	var longForm *synthesis.LongForm
	if p.SynthesisTasks != nil {
		longForm = &synthesis.LongForm{Starter: launcher, Waiter: poller}
	}
	return synthesis.NewBatchSynthesizer(p.Speech, store, voices, longForm, synthesis.Options{
		FailFast:    cfg.BatchFailFast,
		Concurrency: cfg.BatchConcurrency,
		Provider:    cfg.SynthesisProvider,
	}, m, logger.Named("synthesis"))
}

func provideActivities(launcher *jobs.Launcher, poller *jobs.Poller, t *translation.BatchTranslator, s *synthesis.BatchSynthesizer, runs repository.RunDAO) *activities.Activities {
	return activities.New(launcher, poller, t, s, runs)
}

func providePipeline(cfg *config.Config) *workflows.Pipeline {
	budget := cfg.SlowestProvider()
	return &workflows.Pipeline{
		PollInterval:  cfg.PollInterval,
		MaxPolls:      int(transcriptionTimeout / cfg.PollInterval),
		Attempts:      int32(budget.Retries),
		RetryInterval: budget.RetryDelay(),
	}
}

func provideTemporalClient(cfg *config.Config, logger *zap.Logger) (client.Client, func(), error) {
	c, err := common.NewTemporalClient(cfg.Temporal, logger.Named("temporal"))
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

// provideLazyTemporalClient returns nil when the orchestrator is not Temporal.
func provideLazyTemporalClient(cfg *config.Config, logger *zap.Logger) (client.Client, func(), error) {
	if cfg.Orchestrator != config.OrchestratorTemporal {
		return nil, func() {}, nil
	}
	c, err := common.NewLazyTemporalClient(cfg.Temporal, logger.Named("temporal"))
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

func provideOrchestrator(cfg *config.Config, c client.Client, aws *amazon.Clients) trigger.Orchestrator {
	if cfg.Orchestrator == config.OrchestratorStepFunctions {
		return trigger.NewStepFunctionsOrchestrator(aws.SFN, cfg.StateMachineARN)
	}
	return trigger.NewTemporalOrchestrator(c, cfg.Temporal.TaskQueue, cfg.PipelineWorkflow)
}

func provideTrigger(cfg *config.Config, o trigger.Orchestrator, runs repository.RunDAO, logger *zap.Logger) *trigger.Trigger {
	return trigger.New(o, cfg.TargetLanguages, runs, logger.Named("trigger"))
}

func provideHealthServer(cfg *config.Config, c client.Client, store storage.Store, jobStore repository.JobStore, reg *prometheus.Registry, logger *zap.Logger) *worker.HealthServer {
	identity, _ := os.Hostname()
	hs := worker.NewHealthServer(identity, cfg.Temporal.TaskQueue, reg, logger.Named("health"))
	hs.AddCheck("temporal", func(ctx context.Context) error {
		_, err := c.CheckHealth(ctx, &client.CheckHealthRequest{})
		return err
	})
	if r, ok := store.(interface{ Ready(context.Context) error }); ok {
		hs.AddCheck("storage", r.Ready)
	}
	if p, ok := jobStore.(interface{ Ping(context.Context) error }); ok {
		hs.AddCheck("redis", p.Ping)
	}
	return hs
}

func provideSDKWorker(cfg *config.Config, c client.Client, acts *activities.Activities, pipeline *workflows.Pipeline) sdkworker.Worker {
	identity, _ := os.Hostname()
	return worker.New(c, cfg.Temporal.TaskQueue, acts, pipeline, worker.Options{
		Identity:                identity,
		MaxConcurrentActivities: 10,
		MaxConcurrentWorkflows:  10,
	})
}
