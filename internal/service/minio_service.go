package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioService : альтернативный драйвер хранилища (s3.driver = minio)
type MinioService struct {
	client *minio.Client
	bucket string
}

func NewMinioService(ctx context.Context, cfg *config.S3Config) (*MinioService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, util.LogError("[MinioService] ошибка создания клиента", err)
	}

	if cfg.Local {
		exists, err := client.BucketExists(ctx, cfg.Bucket)
		if err != nil {
			return nil, util.LogError("[MinioService] ошибка проверки бакета", err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
				return nil, util.LogError("[MinioService] ошибка создания бакета", err)
			}
			zap.L().Info("[MinioService] бакет создан", zap.String("bucket", cfg.Bucket))
		}
	}

	return &MinioService{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioService) GetObject(ctx context.Context, bucket, key string, byteRange *model.ByteRange) (io.ReadCloser, *model.ObjectInfo, error) {
	info, err := s.HeadObject(ctx, bucket, key)
	if err != nil {
		return nil, nil, err
	}

	opts := minio.GetObjectOptions{}
	if byteRange != nil {
		var rangeErr error
		switch {
		case byteRange.End >= 0:
			rangeErr = opts.SetRange(byteRange.Start, byteRange.End)
		case byteRange.Start > 0:
			rangeErr = opts.SetRange(byteRange.Start, 0)
		}
		if rangeErr != nil {
			return nil, nil, fmt.Errorf("[MinioService] некорректный диапазон: %w", rangeErr)
		}
	}

	object, err := s.client.GetObject(ctx, s.bucketOr(bucket), key, opts)
	if err != nil {
		return nil, nil, s.mapError("GetObject", err)
	}

	return object, info, nil
}

func (s *MinioService) HeadObject(ctx context.Context, bucket, key string) (*model.ObjectInfo, error) {
	stat, err := s.client.StatObject(ctx, s.bucketOr(bucket), key, minio.StatObjectOptions{})
	if err != nil {
		return nil, s.mapError("StatObject", err)
	}
	return &model.ObjectInfo{Size: stat.Size, ContentType: stat.ContentType, ETag: stat.ETag}, nil
}

func (s *MinioService) PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucketOr(bucket), key, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return s.mapError("PutObject", err)
	}
	return nil
}

func (s *MinioService) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucketOr(bucket), key, minio.RemoveObjectOptions{}); err != nil {
		return s.mapError("RemoveObject", err)
	}
	return nil
}

func (s *MinioService) bucketOr(bucket string) string {
	if bucket == "" {
		return s.bucket
	}
	return bucket
}

func (s *MinioService) mapError(op string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return fmt.Errorf("[MinioService] %s: %w", op, model.ErrNotFound)
	}
	return util.LogError(fmt.Sprintf("[MinioService] ошибка %s", op), err)
}
