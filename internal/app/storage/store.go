// Package storage reads and writes pipeline objects on MinIO or S3.
package storage

import (
	"bytes"
	"context"
	"io"
	"time"

	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/locator"
)

// Content types of pipeline artifacts.
const (
	ContentTypeText  = "text/plain; charset=utf-8"
	ContentTypeAudio = "audio/mpeg"
)

// Object describes one listed object.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is the object storage used by every pipeline stage. Get returns an error matching
// errors.ErrObjectNotFound when the object does not exist.
type Store interface {
	// Put writes body to ref. A size of -1 means the length is unknown.
	Put(ctx context.Context, ref locator.Ref, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, ref locator.Ref) (io.ReadCloser, error)
	Copy(ctx context.Context, src, dst locator.Ref) error
	List(ctx context.Context, bucket, prefix string) ([]Object, error)
}

// PutText writes text to ref, replacing any previous content.
func PutText(ctx context.Context, s Store, ref locator.Ref, text string) error {
	return s.Put(ctx, ref, bytes.NewReader([]byte(text)), int64(len(text)), ContentTypeText)
}

// ReadAll returns the whole content of ref.
func ReadAll(ctx context.Context, s Store, ref locator.Ref) ([]byte, error) {
	body, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to read %s", ref)
	}
	return data, nil
}

// ReadText returns the text stored at ref. Transcription result documents are reduced to
// their transcript; anything else is returned as plain text.
func ReadText(ctx context.Context, s Store, ref locator.Ref) (string, error) {
	data, err := ReadAll(ctx, s, ref)
	if err != nil {
		return "", err
	}
	return ParseTranscript(data), nil
}

func notFound(ref locator.Ref) error {
	return apperrors.Wrapf(apperrors.ErrObjectNotFound, "%s", ref)
}
