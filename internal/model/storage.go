package model

import "io"

// ByteRange : включительный диапазон байт. End < 0 означает "до конца объекта"
type ByteRange struct {
	Start int64
	End   int64
}

type ObjectInfo struct {
	Size        int64
	ContentType string
	ETag        string
}

// Content : тело, готовое к отдаче клиенту
type Content struct {
	Body        io.ReadCloser
	Length      int64
	Total       int64
	Start       int64
	Partial     bool
	ContentType string
	Decrypted   bool
}
