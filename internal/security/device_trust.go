package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

const (
	KindDeviceTrust = "dt"
	KindEmailProof  = "ep"
	// KindViewReceipt : квитанция об учтённом просмотре, по ней догрузки диапазонов не списывают просмотр
	KindViewReceipt = "vr"
)

// CookieSigner : подписанные cookie device-trust / email-proof, привязанные к конкретной шаре.
// Формат значения: deviceID.expiryUnix.hex(HMAC-SHA256(secret, kind|token|deviceID|expiry))
type CookieSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewCookieSigner(secret string, ttl time.Duration) *CookieSigner {
	return &CookieSigner{secret: []byte(secret), ttl: ttl}
}

func (s *CookieSigner) TTL() time.Duration {
	return s.ttl
}

// WithTTL : тот же секрет, другой срок жизни
func (s *CookieSigner) WithTTL(ttl time.Duration) *CookieSigner {
	return &CookieSigner{secret: s.secret, ttl: ttl}
}

// CookieName : имя не раскрывает сам токен
func CookieName(kind, token string) string {
	sum := blake3.Sum256([]byte(token))
	return kind + "_" + hex.EncodeToString(sum[:8])
}

// Issue : новое значение со свежим случайным deviceID
func (s *CookieSigner) Issue(kind, token string, now time.Time) (string, time.Time) {
	deviceID := uuid.NewString()
	expiresAt := now.Add(s.ttl)
	expiry := strconv.FormatInt(expiresAt.Unix(), 10)
	return deviceID + "." + expiry + "." + s.sign(kind, token, deviceID, expiry), expiresAt
}

// Verify : подпись сравнивается за постоянное время, просроченные значения отклоняются
func (s *CookieSigner) Verify(kind, token, value string, now time.Time) bool {
	parts := strings.Split(value, ".")
	if len(parts) != 3 || parts[0] == "" {
		return false
	}

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || now.Unix() >= expiry {
		return false
	}

	expected := s.sign(kind, token, parts[0], parts[1])
	return hmac.Equal([]byte(expected), []byte(parts[2]))
}

func (s *CookieSigner) sign(kind, token, deviceID, expiry string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = fmt.Fprintf(mac, "%s|%s|%s|%s", kind, token, deviceID, expiry)
	return hex.EncodeToString(mac.Sum(nil))
}
