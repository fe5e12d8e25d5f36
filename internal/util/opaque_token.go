package util

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateOpaqueID : случайный URL-safe идентификатор из byteLength байт энтропии.
// Используется для тикетов, в нём нет ничего, что указывает на объект в хранилище
func GenerateOpaqueID(byteLength int) (string, error) {
	bytes := make([]byte, byteLength)

	if _, err := rand.Read(bytes); err != nil {
		return "", LogError("[util] ошибка генерации идентификатора", err)
	}

	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
