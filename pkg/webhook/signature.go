package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	HeaderSignature = "X-Notifyhub-Signature"
	HeaderTimestamp = "X-Notifyhub-Timestamp"
)

// Sign returns hex(HMAC-SHA256(secret, "<unix>.<payload>")).
func Sign(secret string, ts time.Time, payload []byte) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts.Unix())
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

func setSignature(h http.Header, secret string, payload []byte) error {
	now := time.Now()
	sig, err := Sign(secret, now, payload)
	if err != nil {
		return err
	}
	h.Set(HeaderSignature, sig)
	h.Set(HeaderTimestamp, strconv.FormatInt(now.Unix(), 10))
	return nil
}

// Verify checks the signature headers of a received request body. A zero
// maxAge disables the timestamp window.
func Verify(secret string, h http.Header, payload []byte, maxAge time.Duration) error {
	if secret == "" {
		return ErrMissingSecret
	}
	unix, err := strconv.ParseInt(h.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrBadSignature)
	}
	ts := time.Unix(unix, 0)
	if maxAge > 0 {
		age := time.Since(ts)
		if age > maxAge || age < -time.Minute {
			return ErrStaleSignature
		}
	}
	want, _ := Sign(secret, ts, payload)
	if !hmac.Equal([]byte(want), []byte(h.Get(HeaderSignature))) {
		return ErrBadSignature
	}
	return nil
}
