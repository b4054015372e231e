package auth

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const keySalt = "modconsole/session/v1"

// deriveKeys expands the configured session secret into a 64-byte HMAC key
// and a 32-byte AES-256 key for the cookie store, so one secret can both
// sign and encrypt without reusing key material.
func deriveKeys(secret string) (hashKey, blockKey []byte, err error) {
	hashKey = make([]byte, 64)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), []byte(keySalt), []byte("hash")), hashKey); err != nil {
		return nil, nil, fmt.Errorf("derive hash key: %w", err)
	}
	blockKey = make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), []byte(keySalt), []byte("block")), blockKey); err != nil {
		return nil, nil, fmt.Errorf("derive block key: %w", err)
	}
	return hashKey, blockKey, nil
}

// CSRFKey derives the 32-byte gorilla/csrf authentication key from the
// session secret.
func CSRFKey(secret string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), []byte(keySalt), []byte("csrf")), key); err != nil {
		return nil, fmt.Errorf("derive csrf key: %w", err)
	}
	return key, nil
}
