package util

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP : адрес клиента. Если задан заголовок edge-прокси, доверяем ему (первое значение списка)
func ClientIP(r *http.Request, trustedHeader string) string {
	if trustedHeader != "" {
		if value := r.Header.Get(trustedHeader); value != "" {
			first, _, _ := strings.Cut(value, ",")
			return strings.TrimSpace(first)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Country : двухбуквенный код страны из заголовка edge-прокси, пусто если неизвестна
func Country(r *http.Request, header string) string {
	if header == "" {
		return ""
	}
	value := strings.ToUpper(strings.TrimSpace(r.Header.Get(header)))
	if len(value) != 2 || value == "XX" {
		return ""
	}
	return value
}
