package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// VoiceTable maps a language code to a synthesis voice. Languages without an entry use
// Default. The table is read-only once built.
type VoiceTable struct {
	Default string            `yaml:"default"`
	Voices  map[string]string `yaml:"voices"`
}

// Resolve returns the voice for language, falling back to the default voice.
func (t VoiceTable) Resolve(language string) string {
	if voice, ok := t.Voices[language]; ok && voice != "" {
		return voice
	}
	// "pt-BR" falls back to a "pt" entry before the default
	if base, _, found := strings.Cut(language, "-"); found {
		if voice, ok := t.Voices[base]; ok && voice != "" {
			return voice
		}
	}
	return t.Default
}

// DefaultPollyVoices is the voice table used with the AWS synthesis provider.
func DefaultPollyVoices() VoiceTable {
	return VoiceTable{
		Default: "Joanna",
		Voices: map[string]string{
			"en": "Joanna",
			"es": "Lucia",
			"fr": "Lea",
			"de": "Vicki",
			"it": "Bianca",
			"ja": "Mizuki",
			"nl": "Lotte",
		},
	}
}

// DefaultOpenAIVoices is the voice table used with the OpenAI synthesis provider.
func DefaultOpenAIVoices() VoiceTable {
	return VoiceTable{
		Default: "alloy",
		Voices: map[string]string{
			"es": "nova",
			"fr": "shimmer",
			"de": "onyx",
		},
	}
}

// LoadVoiceTable builds the voice table for a synthesis provider. A YAML file, when given,
// replaces the provider defaults; defaultVoice, when given, overrides the fallback voice.
//
//	default: Joanna
//	voices:
//	  es: Lucia
//	  fr: Lea
func LoadVoiceTable(path, provider, defaultVoice string) (VoiceTable, error) {
	table := DefaultPollyVoices()
	if provider == ProviderOpenAI {
		table = DefaultOpenAIVoices()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return VoiceTable{}, fmt.Errorf("failed to read voices file: %w", err)
		}
		var fromFile VoiceTable
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return VoiceTable{}, fmt.Errorf("failed to parse voices file: %w", err)
		}
		if fromFile.Default == "" {
			fromFile.Default = table.Default
		}
		table = fromFile
	}

	if defaultVoice != "" {
		table.Default = defaultVoice
	}
	if table.Default == "" {
		return VoiceTable{}, fmt.Errorf("voice table has no default voice")
	}
	return table, nil
}
