package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "voice-relay/internal/app/errors"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "translations/talk_es.txt", Key(TranslationsFolder, "talk", "es", TextExtension))
	assert.Equal(t, "audio_outputs/talk_fr.mp3", Key(AudioFolder, "talk", "fr", AudioExtension))
}

func TestKey_DeterministicAndCollisionFree(t *testing.T) {
	languages := []string{"es", "fr", "de", "pt-BR", "zh", "zh-TW"}
	filenames := []string{"talk", "talk_20261019_101500.123_ab12cd34", "a b"}

	for _, filename := range filenames {
		seen := make(map[string]string)
		for _, lang := range languages {
			first := Translation("bucket", filename, lang)
			second := Translation("bucket", filename, lang)
			assert.Equal(t, first, second, "same inputs must give the same key")

			if other, ok := seen[first.Key]; ok {
				t.Fatalf("languages %s and %s collide on %s", other, lang, first.Key)
			}
			seen[first.Key] = lang
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"talk.mp3", "talk"},
		{"uploads/2026/talk.mp3", "talk"},
		{"talk_20261019_101500.123_ab12cd34.mp3", "talk_20261019_101500.123_ab12cd34"},
		{"noext", "noext"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseName(tt.key))
		})
	}
}

func TestArtifactLayout(t *testing.T) {
	assert.Equal(t, "s3://media/transcripts/talk-20261019.txt", Transcript("media", "talk-20261019").URI())
	assert.Equal(t, "s3://media/translations/talk_de.txt", Translation("media", "talk", "de").URI())
	assert.Equal(t, "s3://media/audio_outputs/talk_de.mp3", Audio("media", "talk", "de").URI())
}

func TestIsOutputKey(t *testing.T) {
	assert.True(t, IsOutputKey("transcripts/job.txt"))
	assert.True(t, IsOutputKey("translations/talk_es.txt"))
	assert.True(t, IsOutputKey("audio_outputs/talk_es.mp3"))
	assert.False(t, IsOutputKey("uploads/talk.mp3"))
	assert.False(t, IsOutputKey("transcripts-old/talk.mp3"))
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want Ref
	}{
		{"s3 scheme", "s3://media/transcripts/job.txt", Ref{"media", "transcripts/job.txt"}},
		{"minio scheme", "minio://media/a/b.mp3", Ref{"media", "a/b.mp3"}},
		{"path style", "https://s3.us-east-1.amazonaws.com/media/transcripts/job.txt", Ref{"media", "transcripts/job.txt"}},
		{"virtual hosted", "https://media.s3.eu-west-1.amazonaws.com/audio_outputs/task.mp3", Ref{"media", "audio_outputs/task.mp3"}},
		{"escaped key", "https://s3.amazonaws.com/media/uploads/my%20talk.mp3", Ref{"media", "uploads/my talk.mp3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseURI(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
		})
	}
}

func TestParseURI_Invalid(t *testing.T) {
	for _, raw := range []string{"ftp://media/key", "s3://media", "s3:///key", "not a uri\x7f"} {
		_, err := ParseURI(raw)
		assert.Error(t, err, raw)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidURI), raw)
	}
}

func TestRoundTrip(t *testing.T) {
	ref := Audio("media", "talk", "es")
	parsed, err := ParseURI(ref.URI())
	require.NoError(t, err)
	assert.Equal(t, ref, parsed)
}
