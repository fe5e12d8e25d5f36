package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"
)

const (
	HeaderScanSecret    = "X-Scan-Secret"
	HeaderScanTimestamp = "X-Scan-Timestamp"
	HeaderScanSignature = "X-Scan-Signature"

	scanSignatureSkew = 5 * time.Minute
)

// VerifyScanTrigger : общий секрет в заголовке, либо подпись HMAC-SHA256(secret, timestamp)
func VerifyScanTrigger(secret string, header http.Header, now time.Time) bool {
	if secret == "" {
		return false
	}

	if provided := header.Get(HeaderScanSecret); provided != "" {
		return hmac.Equal([]byte(provided), []byte(secret))
	}

	timestamp := header.Get(HeaderScanTimestamp)
	signature := header.Get(HeaderScanSignature)
	if timestamp == "" || signature == "" {
		return false
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	skew := now.Sub(time.Unix(unix, 0))
	if skew > scanSignatureSkew || skew < -scanSignatureSkew {
		return false
	}

	return hmac.Equal([]byte(SignScanTrigger(secret, timestamp)), []byte(signature))
}

func SignScanTrigger(secret, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}
