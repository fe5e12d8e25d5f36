package ports

import (
	"context"
	"io"

	"secure-doc-gateway/internal/model"
)

// ObjectStorage : внешнее blob-хранилище (S3 или MinIO)
type ObjectStorage interface {
	GetObject(ctx context.Context, bucket, key string, byteRange *model.ByteRange) (io.ReadCloser, *model.ObjectInfo, error)
	HeadObject(ctx context.Context, bucket, key string) (*model.ObjectInfo, error)
	PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error
	DeleteObject(ctx context.Context, bucket, key string) error
}
