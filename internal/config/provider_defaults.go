package config

import "time"

// Provider call defaults
const (
	// Timeout defaults
	DefaultAWSTimeout    = 60 * time.Second
	DefaultOpenAITimeout = 120 * time.Second
	DefaultGeminiTimeout = 60 * time.Second

	// Retry defaults
	DefaultRetries      = 3
	DefaultRetryDelayMs = 1000

	// OpenAI specific
	DefaultOpenAIMaxRetries = 5

	// Synchronous synthesis limit; longer texts use an asynchronous task
	DefaultSyncSynthesisChars = 3000
)

// ProviderDefaults holds the call budget for one provider. Activities calling the provider
// use Timeout as their start-to-close timeout and Retries as their maximum attempts.
type ProviderDefaults struct {
	Timeout      time.Duration
	Retries      int
	RetryDelayMs int
}

// RetryDelay returns the initial retry interval.
func (p ProviderDefaults) RetryDelay() time.Duration {
	return time.Duration(p.RetryDelayMs) * time.Millisecond
}

// GetProviderDefaults returns default configuration for a given provider type
func GetProviderDefaults(providerType string) ProviderDefaults {
	switch providerType {
	case ProviderAWS:
		return ProviderDefaults{
			Timeout:      DefaultAWSTimeout,
			Retries:      DefaultRetries,
			RetryDelayMs: DefaultRetryDelayMs,
		}
	case ProviderOpenAI:
		// whisper uploads the whole file in one request
		return ProviderDefaults{
			Timeout:      DefaultOpenAITimeout,
			Retries:      DefaultOpenAIMaxRetries,
			RetryDelayMs: DefaultRetryDelayMs * 2,
		}
	case ProviderGemini:
		return ProviderDefaults{
			Timeout:      DefaultGeminiTimeout,
			Retries:      DefaultRetries,
			RetryDelayMs: DefaultRetryDelayMs,
		}
	default:
		return ProviderDefaults{
			Timeout:      60 * time.Second,
			Retries:      2,
			RetryDelayMs: 1000,
		}
	}
}

// SlowestProvider returns the largest call budget among the configured providers.
func (c *Config) SlowestProvider() ProviderDefaults {
	slowest := GetProviderDefaults(c.TranscriptionProvider)
	for _, name := range []string{c.TranslationProvider, c.SynthesisProvider} {
		if d := GetProviderDefaults(name); d.Timeout > slowest.Timeout {
			slowest = d
		}
	}
	return slowest
}
