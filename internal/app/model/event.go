package model

import "strings"

// StorageEvent is an object notification in the S3 event format, as delivered by S3,
// MinIO webhooks and MinIO bucket listeners.
type StorageEvent struct {
	Records []StorageRecord `json:"Records"`
}

// StorageRecord is one record of a storage notification.
type StorageRecord struct {
	EventName string   `json:"eventName,omitempty"`
	EventTime string   `json:"eventTime,omitempty"`
	S3        S3Entity `json:"s3"`
}

type S3Entity struct {
	Bucket BucketEntity `json:"bucket"`
	Object ObjectEntity `json:"object"`
}

type BucketEntity struct {
	Name string `json:"name"`
}

type ObjectEntity struct {
	Key  string `json:"key"`
	Size int64  `json:"size,omitempty"`
}

// ObjectCreated reports whether the record announces a new object. S3 uses names like
// "ObjectCreated:Put" and MinIO "s3:ObjectCreated:Put"; records without a name are
// treated as creations.
func (r StorageRecord) ObjectCreated() bool {
	return r.EventName == "" || strings.Contains(r.EventName, "ObjectCreated")
}
