package movie

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
)

// Archive stores raw upstream payloads.
type Archive interface {
	Put(ctx context.Context, name string, payload []byte) error
}

// MinIOArchive writes payloads as JSON objects into a MinIO bucket.
type MinIOArchive struct {
	client *minio.Client
	bucket string
}

// NewMinIOArchive returns an Archive backed by bucket.
func NewMinIOArchive(client *minio.Client, bucket string) *MinIOArchive {
	return &MinIOArchive{client: client, bucket: bucket}
}

// Put uploads payload under name.
func (a *MinIOArchive) Put(ctx context.Context, name string, payload []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", name, err)
	}
	return nil
}
