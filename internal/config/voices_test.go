package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceTable_Resolve(t *testing.T) {
	table := DefaultPollyVoices()

	assert.Equal(t, "Lucia", table.Resolve("es"))
	assert.Equal(t, "Lea", table.Resolve("fr"))
	assert.Equal(t, "Joanna", table.Resolve("pt"), "absent language falls back to the default voice")
	assert.Equal(t, "Lucia", table.Resolve("es-MX"), "regional code falls back to its base language")
	assert.Equal(t, "Joanna", table.Resolve(""))
}

// SynthesizeSpeech is sent without an engine, so every default must be a standard voice.
func TestDefaultPollyVoices_StandardEngine(t *testing.T) {
	neuralOnly := map[string]bool{"Laura": true, "Ruth": true, "Stephen": true, "Kajal": true, "Hala": true}
	table := DefaultPollyVoices()

	assert.False(t, neuralOnly[table.Default])
	for language, voice := range table.Voices {
		assert.False(t, neuralOnly[voice], "%s uses neural-only voice %s", language, voice)
	}
	assert.Equal(t, "Lotte", table.Resolve("nl"))
}

func TestLoadVoiceTable_ProviderDefaults(t *testing.T) {
	table, err := LoadVoiceTable("", ProviderAWS, "")
	require.NoError(t, err)
	assert.Equal(t, "Joanna", table.Default)

	table, err = LoadVoiceTable("", ProviderOpenAI, "")
	require.NoError(t, err)
	assert.Equal(t, "alloy", table.Default)
	assert.Equal(t, "nova", table.Resolve("es"))
}

func TestLoadVoiceTable_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voices.yaml")
	content := "default: Matthew\nvoices:\n  es: Conchita\n  pt: Camila\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := LoadVoiceTable(path, ProviderAWS, "")
	require.NoError(t, err)

	assert.Equal(t, "Conchita", table.Resolve("es"))
	assert.Equal(t, "Camila", table.Resolve("pt"))
	assert.Equal(t, "Matthew", table.Resolve("fr"), "file replaces the built-in table")
}

func TestLoadVoiceTable_DefaultVoiceOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voices.yaml")
	require.NoError(t, os.WriteFile(path, []byte("voices:\n  es: Lucia\n"), 0644))

	table, err := LoadVoiceTable(path, ProviderAWS, "Salli")
	require.NoError(t, err)
	assert.Equal(t, "Salli", table.Resolve("pt"))
	assert.Equal(t, "Lucia", table.Resolve("es"))
}

func TestLoadVoiceTable_Errors(t *testing.T) {
	_, err := LoadVoiceTable(filepath.Join(t.TempDir(), "missing.yaml"), ProviderAWS, "")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("voices: [unclosed"), 0644))
	_, err = LoadVoiceTable(path, ProviderAWS, "")
	assert.Error(t, err)
}
