package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/locator"
)

type fakeS3 struct {
	s3iface.S3API

	objects map[string][]byte
	copied  []*s3.CopyObjectInput
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, in *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) CopyObjectWithContext(ctx aws.Context, in *s3.CopyObjectInput, opts ...request.Option) (*s3.CopyObjectOutput, error) {
	f.copied = append(f.copied, in)
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2PagesWithContext(ctx aws.Context, in *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error {
	var contents []*s3.Object
	for k, v := range f.objects {
		bucket, key, _ := strings.Cut(k, "/")
		if bucket == *in.Bucket && strings.HasPrefix(key, *in.Prefix) {
			contents = append(contents, &s3.Object{
				Key:          aws.String(key),
				Size:         aws.Int64(int64(len(v))),
				LastModified: aws.Time(time.Unix(0, 0)),
			})
		}
	}
	fn(&s3.ListObjectsV2Output{Contents: contents}, true)
	return nil
}

func TestS3Store_PutAndGet(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	store := NewS3Store(client)
	ref := locator.Translation("media", "talk", "fr")

	// a reader without Seek is buffered
	require.NoError(t, store.Put(ctx, ref, io.LimitReader(strings.NewReader("bonjour"), 100), -1, ContentTypeText))

	text, err := ReadText(ctx, store, ref)
	require.NoError(t, err)
	assert.Equal(t, "bonjour", text)
}

func TestS3Store_NotFound(t *testing.T) {
	store := NewS3Store(newFakeS3())

	_, err := store.Get(context.Background(), locator.Ref{Bucket: "media", Key: "nope.txt"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrObjectNotFound))
	assert.False(t, apperrors.IsServiceError(err))
}

func TestS3Store_PutFailureIsServiceError(t *testing.T) {
	client := newFakeS3()
	client.putErr = awserr.New("AccessDenied", "denied", nil)
	store := NewS3Store(client)

	err := PutText(context.Background(), store, locator.Translation("media", "talk", "de"), "hallo")
	require.Error(t, err)
	assert.True(t, apperrors.IsServiceError(err))
	assert.Contains(t, err.Error(), "s3.PutObject failed")
}

func TestS3Store_CopyEscapesSource(t *testing.T) {
	client := newFakeS3()
	store := NewS3Store(client)

	src := locator.Ref{Bucket: "media", Key: "audio_outputs/my talk.mp3"}
	require.NoError(t, store.Copy(context.Background(), src, locator.Audio("media", "my talk", "es")))

	require.Len(t, client.copied, 1)
	assert.Equal(t, "media/audio_outputs/my%20talk.mp3", *client.copied[0].CopySource)
	assert.Equal(t, "audio_outputs/my talk_es.mp3", *client.copied[0].Key)
}

func TestS3Store_List(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	store := NewS3Store(client)
	require.NoError(t, PutText(ctx, store, locator.Ref{Bucket: "media", Key: "uploads/a.mp3"}, "a"))
	require.NoError(t, PutText(ctx, store, locator.Ref{Bucket: "media", Key: "transcripts/a.txt"}, "t"))

	objects, err := store.List(ctx, "media", "uploads/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "uploads/a.mp3", objects[0].Key)
	assert.Equal(t, int64(1), objects[0].Size)
}
