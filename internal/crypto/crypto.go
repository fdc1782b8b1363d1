package crypto

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	// ErrEmptySecret is returned when signing is attempted without a key.
	ErrEmptySecret = errors.New("signing secret cannot be empty")
	// ErrInvalidSignature is returned when a provided digest does not match the payload.
	ErrInvalidSignature = errors.New("signature does not match payload")
)

// SignHMACSHA512 returns the lowercase hex HMAC-SHA512 digest of payload keyed by secret.
func SignHMACSHA512(secret string, payload []byte) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifyHMACSHA512 checks a hex digest against the payload in constant time.
// The comparison is case-insensitive on the hex encoding and ignores surrounding whitespace.
func VerifyHMACSHA512(secret string, payload []byte, signature string) error {
	expected, err := SignHMACSHA512(secret, payload)
	if err != nil {
		return err
	}
	provided := strings.ToLower(strings.TrimSpace(signature))
	if !hmac.Equal([]byte(expected), []byte(provided)) {
		return ErrInvalidSignature
	}
	return nil
}
