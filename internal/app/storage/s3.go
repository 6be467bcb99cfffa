package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/locator"
)

// S3Store implements Store on Amazon S3.
type S3Store struct {
	client s3iface.S3API
}

func NewS3Store(client s3iface.S3API) *S3Store {
	return &S3Store{client: client}
}

func (s *S3Store) Put(ctx context.Context, ref locator.Ref, body io.Reader, size int64, contentType string) error {
	seeker, ok := body.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(body)
		if err != nil {
			return apperrors.Wrapf(err, "failed to buffer %s", ref)
		}
		seeker = bytes.NewReader(data)
	}

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(ref.Bucket),
		Key:         aws.String(ref.Key),
		Body:        seeker,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return apperrors.Service("s3.PutObject", err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, ref locator.Ref) (io.ReadCloser, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, notFound(ref)
		}
		return nil, apperrors.Service("s3.GetObject", err)
	}
	return out.Body, nil
}

func (s *S3Store) Copy(ctx context.Context, src, dst locator.Ref) error {
	_, err := s.client.CopyObjectWithContext(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dst.Bucket),
		Key:        aws.String(dst.Key),
		CopySource: aws.String(copySource(src)),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return notFound(src)
		}
		return apperrors.Service("s3.CopyObject", err)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	var out []Object
	err := s.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			out = append(out, Object{
				Key:          aws.StringValue(obj.Key),
				Size:         aws.Int64Value(obj.Size),
				LastModified: aws.TimeValue(obj.LastModified),
			})
		}
		return true
	})
	if err != nil {
		return nil, apperrors.Service("s3.ListObjectsV2", err)
	}
	return out, nil
}

// copySource renders bucket/key with each key segment URL-encoded.
func copySource(ref locator.Ref) string {
	segments := strings.Split(ref.Key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return ref.Bucket + "/" + strings.Join(segments, "/")
}

func isNoSuchKey(err error) bool {
	if aerr, ok := err.(awserr.Error); ok {
		return aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound"
	}
	return false
}
