package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/notification"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/locator"
	"voice-relay/internal/app/model"
	"voice-relay/internal/config"
)

// ObjectCreatedEvents is the notification filter for new objects.
var ObjectCreatedEvents = []string{"s3:ObjectCreated:*"}

// Notification is one batch of storage notifications, or the error that ended a listener.
type Notification struct {
	Event model.StorageEvent
	Err   error
}

// MinioStore implements Store using MinIO
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to MinIO and makes sure the default bucket exists.
func NewMinioStore(ctx context.Context, cfg config.MinIOConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := &MinioStore{client: client, bucket: cfg.Bucket}
	if err := s.EnsureBucket(ctx, cfg.Bucket); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureBucket creates bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// Ready checks that the default bucket is reachable.
func (s *MinioStore) Ready(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

func (s *MinioStore) Put(ctx context.Context, ref locator.Ref, body io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, ref.Bucket, ref.Key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return apperrors.Service("minio.PutObject", err)
	}
	return nil
}

func (s *MinioStore) Get(ctx context.Context, ref locator.Ref) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, ref.Bucket, ref.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.Service("minio.GetObject", err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller reads
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, notFound(ref)
		}
		return nil, apperrors.Service("minio.StatObject", err)
	}
	return obj, nil
}

func (s *MinioStore) Copy(ctx context.Context, src, dst locator.Ref) error {
	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: dst.Bucket, Object: dst.Key},
		minio.CopySrcOptions{Bucket: src.Bucket, Object: src.Key},
	)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return notFound(src)
		}
		return apperrors.Service("minio.CopyObject", err)
	}
	return nil
}

func (s *MinioStore) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	var out []Object
	for obj := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, apperrors.Service("minio.ListObjects", obj.Err)
		}
		out = append(out, Object{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return out, nil
}

// Listen subscribes to object-created notifications for bucket. The channel closes when
// ctx is done or the server ends the subscription.
func (s *MinioStore) Listen(ctx context.Context, bucket, prefix string) <-chan Notification {
	out := make(chan Notification)
	go func() {
		defer close(out)
		for info := range s.client.ListenBucketNotification(ctx, bucket, prefix, "", ObjectCreatedEvents) {
			n := Notification{Event: fromNotificationInfo(info), Err: info.Err}
			select {
			case out <- n:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func fromNotificationInfo(info notification.Info) model.StorageEvent {
	event := model.StorageEvent{Records: make([]model.StorageRecord, 0, len(info.Records))}
	for _, r := range info.Records {
		event.Records = append(event.Records, model.StorageRecord{
			EventName: r.EventName,
			EventTime: r.EventTime,
			S3: model.S3Entity{
				Bucket: model.BucketEntity{Name: r.S3.Bucket.Name},
				Object: model.ObjectEntity{Key: r.S3.Object.Key, Size: r.S3.Object.Size},
			},
		})
	}
	return event
}
