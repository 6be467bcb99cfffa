package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Provider names accepted by the *_PROVIDER variables.
const (
	ProviderAWS    = "aws"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Orchestrator and storage backends.
const (
	OrchestratorTemporal      = "temporal"
	OrchestratorStepFunctions = "stepfunctions"

	StorageMinIO = "minio"
	StorageS3    = "s3"
)

// Defaults
const (
	DefaultTargetLanguages  = "es,fr,de"
	DefaultSourceLanguage   = "en-US"
	DefaultMediaFormat      = "mp3"
	DefaultPollInterval     = 5 * time.Second
	DefaultPipelineWorkflow = "PipelineWorkflow"
	DefaultTemporalHost     = "127.0.0.1:7233"
	DefaultNamespace        = "default"
	DefaultTaskQueue        = "voice-relay-pipeline"
	DefaultMinIOEndpoint    = "localhost:9000"
	DefaultMinIOAccessKey   = "minioadmin"
	DefaultMinIOSecretKey   = "minioadmin"
	DefaultMinIOBucket      = "voice-relay"
	DefaultRedisAddr        = "localhost:6379"
	DefaultSQLitePath       = "data/runs.db"
	DefaultHTTPHost         = "0.0.0.0"
	DefaultHTTPPort         = "8080"
	DefaultHealthPort       = ":8081"
)

// APIKeys holds all API keys loaded from environment
type APIKeys struct {
	OpenAI string
	Gemini string
}

// Config is the process configuration, read once from the environment at start-up.
type Config struct {
	Environment string

	TargetLanguages []string
	SourceLanguage  string
	MediaFormat     string
	PollInterval    time.Duration

	Orchestrator     string
	StateMachineARN  string
	PipelineWorkflow string
	Temporal         TemporalConfig

	StorageBackend string
	MinIO          MinIOConfig
	AWSRegion      string

	TranscriptionProvider string
	TranslationProvider   string
	SynthesisProvider     string
	APIKeys               APIKeys

	VoicesFile   string
	DefaultVoice string

	BatchFailFast    bool
	BatchConcurrency int

	Redis    RedisConfig
	Database DatabaseConfig

	HTTPHost   string
	HTTPPort   string
	HealthPort string
}

// TemporalConfig holds Temporal client configuration
type TemporalConfig struct {
	HostPort  string
	Namespace string
	TaskQueue string
}

// MinIOConfig holds MinIO connection settings
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds the job store connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig selects the run history backend
type DatabaseConfig struct {
	Driver     string
	URL        string
	SQLitePath string
}

// LoadEnv loads environment variables from .env file if it exists
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}

	// Look for .env file, but don't fail if not found (environment variables might be set system-wide)
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	return nil
}

// GetAPIKeys retrieves and validates API keys from environment variables
func GetAPIKeys() (*APIKeys, error) {
	apiKeys := &APIKeys{
		OpenAI: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Gemini: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
	}

	if apiKeys.OpenAI != "" {
		if err := ValidateAPIKey(apiKeys.OpenAI, "OpenAI"); err != nil {
			return nil, fmt.Errorf("invalid OPENAI_API_KEY format: %w", err)
		}
	}
	if apiKeys.Gemini != "" {
		if err := ValidateAPIKey(apiKeys.Gemini, "Gemini"); err != nil {
			return nil, fmt.Errorf("invalid GEMINI_API_KEY format: %w", err)
		}
	}

	return apiKeys, nil
}

// Load reads the configuration from the environment, after loading any .env file.
// Invalid values fail fast.
func Load() (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	apiKeys, err := GetAPIKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to get API keys: %w", err)
	}

	pollInterval, err := GetEnvDuration("POLL_INTERVAL", DefaultPollInterval)
	if err != nil {
		return nil, err
	}
	concurrency, err := GetEnvInt("BATCH_CONCURRENCY", 1)
	if err != nil {
		return nil, err
	}
	redisDB, err := GetEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment:     GetEnv("ENV", "production"),
		TargetLanguages: ParseLanguages(GetEnv("TARGET_LANGUAGES", DefaultTargetLanguages)),
		SourceLanguage:  GetEnv("SOURCE_LANGUAGE", DefaultSourceLanguage),
		MediaFormat:     GetEnv("MEDIA_FORMAT", DefaultMediaFormat),
		PollInterval:    pollInterval,

		Orchestrator:     strings.ToLower(GetEnv("ORCHESTRATOR", OrchestratorTemporal)),
		StateMachineARN:  os.Getenv("STATE_MACHINE_ARN"),
		PipelineWorkflow: GetEnv("PIPELINE_WORKFLOW", DefaultPipelineWorkflow),
		Temporal: TemporalConfig{
			HostPort:  GetEnv("TEMPORAL_HOST", DefaultTemporalHost),
			Namespace: GetEnv("TEMPORAL_NAMESPACE", DefaultNamespace),
			TaskQueue: GetEnv("TASK_QUEUE", DefaultTaskQueue),
		},

		StorageBackend: strings.ToLower(GetEnv("STORAGE_BACKEND", StorageMinIO)),
		MinIO: MinIOConfig{
			Endpoint:  GetEnv("MINIO_ENDPOINT", DefaultMinIOEndpoint),
			AccessKey: GetEnv("MINIO_ACCESS_KEY", DefaultMinIOAccessKey),
			SecretKey: GetEnv("MINIO_SECRET_KEY", DefaultMinIOSecretKey),
			Bucket:    GetEnv("MINIO_BUCKET", DefaultMinIOBucket),
			UseSSL:    GetEnvBool("MINIO_USE_SSL", false),
		},
		AWSRegion: os.Getenv("AWS_REGION"),

		TranscriptionProvider: strings.ToLower(GetEnv("TRANSCRIPTION_PROVIDER", ProviderAWS)),
		TranslationProvider:   strings.ToLower(GetEnv("TRANSLATION_PROVIDER", ProviderAWS)),
		SynthesisProvider:     strings.ToLower(GetEnv("SYNTHESIS_PROVIDER", ProviderAWS)),
		APIKeys:               *apiKeys,

		VoicesFile:   os.Getenv("VOICES_FILE"),
		DefaultVoice: os.Getenv("DEFAULT_VOICE"),

		BatchFailFast:    GetEnvBool("BATCH_FAIL_FAST", false),
		BatchConcurrency: concurrency,

		Redis: RedisConfig{
			Addr:     GetEnv("REDIS_ADDR", DefaultRedisAddr),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(GetEnv("DATABASE_DRIVER", "sqlite")),
			URL:        os.Getenv("DATABASE_URL"),
			SQLitePath: GetEnv("SQLITE_PATH", DefaultSQLitePath),
		},

		HTTPHost:   GetEnv("HTTP_HOST", DefaultHTTPHost),
		HTTPPort:   GetEnv("HTTP_PORT", DefaultHTTPPort),
		HealthPort: GetEnv("HEALTH_PORT", DefaultHealthPort),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Development reports whether ENV=development.
func (c *Config) Development() bool {
	return c.Environment == "development"
}

// ParseLanguages splits a comma separated language list, dropping blanks and duplicates.
func ParseLanguages(raw string) []string {
	parts := lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Uniq(lo.Compact(parts))
}

// GetEnv gets environment variable with default
func GetEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt parses an integer variable, returning defaultValue when unset.
func GetEnvInt(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// GetEnvBool parses a boolean variable; unparsable values count as false.
func GetEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return b
}

// GetEnvDuration parses a duration variable such as "5s". A bare integer means seconds.
func GetEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
