package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var languageCodePattern = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z]{2,4})?$`)

// Validate checks the configuration, returning the first problem found.
func (c *Config) Validate() error {
	if len(c.TargetLanguages) == 0 {
		return fmt.Errorf("TARGET_LANGUAGES must name at least one language")
	}
	for _, lang := range c.TargetLanguages {
		if err := ValidateLanguageCode(lang); err != nil {
			return err
		}
	}

	if err := ValidateInterval(c.PollInterval, "poll"); err != nil {
		return err
	}
	if err := ValidateConcurrency(c.BatchConcurrency, "batch"); err != nil {
		return err
	}

	switch c.Orchestrator {
	case OrchestratorTemporal:
		if c.PipelineWorkflow == "" {
			return fmt.Errorf("PIPELINE_WORKFLOW is required for the temporal orchestrator")
		}
	case OrchestratorStepFunctions:
		if !strings.HasPrefix(c.StateMachineARN, "arn:") {
			return fmt.Errorf("STATE_MACHINE_ARN must be a state machine ARN for the stepfunctions orchestrator")
		}
	default:
		return fmt.Errorf("unknown ORCHESTRATOR %q", c.Orchestrator)
	}

	if err := ValidateOneOf(c.StorageBackend, "STORAGE_BACKEND", StorageMinIO, StorageS3); err != nil {
		return err
	}
	if err := ValidateOneOf(c.TranscriptionProvider, "TRANSCRIPTION_PROVIDER", ProviderAWS, ProviderOpenAI); err != nil {
		return err
	}
	if err := ValidateOneOf(c.TranslationProvider, "TRANSLATION_PROVIDER", ProviderAWS, ProviderOpenAI, ProviderGemini); err != nil {
		return err
	}
	if err := ValidateOneOf(c.SynthesisProvider, "SYNTHESIS_PROVIDER", ProviderAWS, ProviderOpenAI); err != nil {
		return err
	}
	if err := ValidateOneOf(c.Database.Driver, "DATABASE_DRIVER", "sqlite", "postgres"); err != nil {
		return err
	}

	if c.usesProvider(ProviderOpenAI) && c.APIKeys.OpenAI == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when an openai provider is selected")
	}
	if c.TranslationProvider == ProviderGemini && c.APIKeys.Gemini == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when the gemini translation provider is selected")
	}
	if c.Database.Driver == "postgres" && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres driver")
	}

	return nil
}

func (c *Config) usesProvider(name string) bool {
	return c.TranscriptionProvider == name || c.TranslationProvider == name || c.SynthesisProvider == name
}

// UsesAWS reports whether any configured component needs an AWS session.
func (c *Config) UsesAWS() bool {
	return c.usesProvider(ProviderAWS) || c.StorageBackend == StorageS3 || c.Orchestrator == OrchestratorStepFunctions
}

// ValidateLanguageCode accepts codes such as "es", "pt-BR" or "zh-TW".
func ValidateLanguageCode(code string) error {
	if !languageCodePattern.MatchString(code) {
		return fmt.Errorf("invalid language code %q", code)
	}
	return nil
}

// ValidateInterval validates a polling interval
func ValidateInterval(interval time.Duration, name string) error {
	if interval <= 0 {
		return fmt.Errorf("%s interval must be positive", name)
	}
	if interval > 10*time.Minute {
		return fmt.Errorf("%s interval too large (max 10 minutes)", name)
	}
	return nil
}

// ValidateConcurrency validates concurrency setting
func ValidateConcurrency(concurrency int, name string) error {
	if concurrency <= 0 {
		return fmt.Errorf("%s concurrency must be positive", name)
	}
	if concurrency > 100 {
		return fmt.Errorf("%s concurrency too high (max 100)", name)
	}
	return nil
}

// ValidateOneOf checks value against the allowed set.
func ValidateOneOf(value, name string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", name, strings.Join(allowed, ", "), value)
}

// ValidateAPIKey validates API key format
func ValidateAPIKey(apiKey string, keyType string) error {
	if apiKey == "" {
		return fmt.Errorf("%s API key is required", keyType)
	}

	switch keyType {
	case "OpenAI":
		if !strings.HasPrefix(apiKey, "sk-") {
			return fmt.Errorf("must start with 'sk-'")
		}
		if len(apiKey) < 20 {
			return fmt.Errorf("too short")
		}
	case "Gemini":
		if !strings.HasPrefix(apiKey, "AIza") {
			return fmt.Errorf("must start with 'AIza'")
		}
		if len(apiKey) < 30 {
			return fmt.Errorf("too short")
		}
	}

	return nil
}
