package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/ports"
)

// NewObjectStorage : драйвер хранилища по конфигурации
func NewObjectStorage(ctx context.Context, cfg *config.S3Config) (ports.ObjectStorage, error) {
	switch cfg.Driver {
	case "minio":
		return NewMinioService(ctx, cfg)
	default:
		return NewS3Service(ctx, cfg)
	}
}

func rangeHeader(r *model.ByteRange) string {
	if r.End < 0 {
		return fmt.Sprintf("bytes=%d-", r.Start)
	}
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End)
}

// ErrRangeNotSatisfiable : диапазон за пределами объекта
var ErrRangeNotSatisfiable = errors.New("range not satisfiable")

// ParseRange : разбирает одиночный диапазон заголовка Range ("bytes=a-b", "bytes=a-", "bytes=-n").
// nil без ошибки, если заголовка нет или он нам не подходит (тогда отдаётся весь объект)
func ParseRange(header string) (*model.ByteRange, error) {
	spec, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok || spec == "" || strings.Contains(spec, ",") {
		return nil, nil
	}

	first, last, ok := strings.Cut(spec, "-")
	if !ok {
		return nil, nil
	}

	if first == "" {
		suffix, err := strconv.ParseInt(last, 10, 64)
		if err != nil || suffix <= 0 {
			return nil, ErrRangeNotSatisfiable
		}
		// суффикс кодируется отрицательным Start до того, как станет известен размер
		return &model.ByteRange{Start: -suffix, End: -1}, nil
	}

	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 {
		return nil, nil
	}
	if last == "" {
		return &model.ByteRange{Start: start, End: -1}, nil
	}

	end, err := strconv.ParseInt(last, 10, 64)
	if err != nil || end < start {
		return nil, ErrRangeNotSatisfiable
	}
	return &model.ByteRange{Start: start, End: end}, nil
}

// ResolveRange : приводит диапазон к абсолютным границам объекта размера size
func ResolveRange(r *model.ByteRange, size int64) (*model.ByteRange, error) {
	if r == nil {
		return nil, nil
	}

	start, end := r.Start, r.End
	if start < 0 {
		start = size + start
		if start < 0 {
			start = 0
		}
		end = size - 1
	}
	if end < 0 || end >= size {
		end = size - 1
	}
	if size == 0 || start >= size {
		return nil, ErrRangeNotSatisfiable
	}
	return &model.ByteRange{Start: start, End: end}, nil
}

// contentRangeTotal : полный размер из "bytes 0-99/1234"
func contentRangeTotal(value string) (int64, bool) {
	_, total, ok := strings.Cut(value, "/")
	if !ok || total == "*" {
		return 0, false
	}
	size, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return 0, false
	}
	return size, true
}
