// Package locator computes the deterministic storage keys of pipeline artifacts.
//
// Writers and readers both derive keys here, so a stage can find the output of an earlier
// stage from {filename, language} alone. Re-running a stage overwrites its artifacts.
package locator

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	apperrors "voice-relay/internal/app/errors"
)

// Artifact subfolders and extensions.
const (
	TranscriptsFolder  = "transcripts"
	TranslationsFolder = "translations"
	AudioFolder        = "audio_outputs"

	TextExtension  = "txt"
	AudioExtension = "mp3"
)

// OutputPrefixes lists the key prefixes the pipeline writes to.
var OutputPrefixes = []string{
	TranscriptsFolder + "/",
	TranslationsFolder + "/",
	AudioFolder + "/",
}

// Ref identifies one stored object.
type Ref struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// URI renders the reference as s3://bucket/key.
func (r Ref) URI() string {
	return fmt.Sprintf("s3://%s/%s", r.Bucket, r.Key)
}

func (r Ref) String() string {
	return r.URI()
}

// Key returns {subfolder}/{filename}_{language}.{extension}.
func Key(subfolder, filename, language, extension string) string {
	return fmt.Sprintf("%s/%s_%s.%s", subfolder, filename, language, extension)
}

// BaseName strips the directory and the extension from an object key.
func BaseName(key string) string {
	base := path.Base(key)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// TranscriptKey returns transcripts/{job}.txt.
func TranscriptKey(jobName string) string {
	return fmt.Sprintf("%s/%s.%s", TranscriptsFolder, jobName, TextExtension)
}

// Transcript returns the reference of a transcription job's output.
func Transcript(bucket, jobName string) Ref {
	return Ref{Bucket: bucket, Key: TranscriptKey(jobName)}
}

// Translation returns the reference of the translation of filename into language.
func Translation(bucket, filename, language string) Ref {
	return Ref{Bucket: bucket, Key: Key(TranslationsFolder, filename, language, TextExtension)}
}

// Audio returns the reference of the synthesized audio of filename in language.
func Audio(bucket, filename, language string) Ref {
	return Ref{Bucket: bucket, Key: Key(AudioFolder, filename, language, AudioExtension)}
}

// IsOutputKey reports whether key lies under one of the pipeline's output prefixes.
func IsOutputKey(key string) bool {
	for _, prefix := range OutputPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// ParseURI accepts s3://bucket/key, minio://bucket/key, and S3 HTTPS URLs in path style
// (https://s3.region.amazonaws.com/bucket/key) or virtual-hosted style
// (https://bucket.s3.region.amazonaws.com/key).
func ParseURI(raw string) (Ref, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Ref{}, apperrors.Wrapf(apperrors.ErrInvalidURI, "%s", raw)
	}

	var ref Ref
	switch u.Scheme {
	case "s3", "minio":
		ref = Ref{Bucket: u.Host, Key: strings.TrimPrefix(u.Path, "/")}
	case "http", "https":
		host := u.Hostname()
		p := strings.TrimPrefix(u.Path, "/")
		if i := strings.Index(host, ".s3"); i > 0 && strings.HasSuffix(host, ".amazonaws.com") {
			ref = Ref{Bucket: host[:i], Key: p}
		} else {
			bucket, key, _ := strings.Cut(p, "/")
			ref = Ref{Bucket: bucket, Key: key}
		}
	default:
		return Ref{}, apperrors.Wrapf(apperrors.ErrInvalidURI, "%s: unsupported scheme %q", raw, u.Scheme)
	}

	if ref.Bucket == "" || ref.Key == "" {
		return Ref{}, apperrors.Wrapf(apperrors.ErrInvalidURI, "%s: missing bucket or key", raw)
	}
	return ref, nil
}
